package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Node is anything with a name and a list of names it depends on.
type Node interface {
	GetName() string
	GetDependencies() []string
}

type mark uint8

const (
	unmarked mark = iota
	inProgress
	done
)

// TopologicalSort orders nodes so every node follows its dependencies.
// Roots and dependencies are walked by name, so equal inputs always
// yield the same order.
func TopologicalSort(nodes map[string]Node) ([]string, error) {
	marks := make(map[string]mark, len(nodes))
	order := make([]string, 0, len(nodes))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch marks[name] {
		case done:
			return nil
		case inProgress:
			start := slices.Index(path, name)
			cycle := append(slices.Clone(path[start:]), name)
			return fmt.Errorf("dependency cycle: %s", strings.Join(cycle, " -> "))
		}

		n, ok := nodes[name]
		if !ok {
			return fmt.Errorf("unknown component %q", name)
		}

		marks[name] = inProgress
		path = append(path, name)
		for _, dep := range slices.Sorted(slices.Values(n.GetDependencies())) {
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		marks[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range slices.Sorted(maps.Keys(nodes)) {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// ValidateGraph reports the first dependency, by node name, that is not
// in nodes.
func ValidateGraph(nodes map[string]Node) error {
	for _, name := range slices.Sorted(maps.Keys(nodes)) {
		for _, dep := range nodes[name].GetDependencies() {
			if _, ok := nodes[dep]; !ok {
				return fmt.Errorf("component %q depends on unknown %q", name, dep)
			}
		}
	}
	return nil
}
