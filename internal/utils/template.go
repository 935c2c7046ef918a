package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"text/template"
)

var funcMap = template.FuncMap{
	"json": ToJSON,
}

// LoadTemplate loads and parses a template file with custom functions
func LoadTemplate(path string) (*template.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", path, err)
	}

	return ParseTemplate(path, string(data))
}

func ParseTemplate(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(funcMap).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// ToJSON converts a value to a JSON string
func ToJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `""`
	}
	return string(b)
}
