package storage

import (
	"fmt"
)

const (
	TypeSQLite = "sqlite"
	TypeNone   = "none"
)

var factoryFuncs = map[string]func(string) (StorageInterface, error){}

func RegisterFactory(storageType string, fn func(string) (StorageInterface, error)) {
	factoryFuncs[storageType] = fn
}

func New(storageType, path string) (StorageInterface, error) {
	if storageType == "" {
		storageType = TypeSQLite
	}

	fn, exists := factoryFuncs[storageType]
	if !exists {
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}

	return fn(path)
}
