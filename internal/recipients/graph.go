package recipients

import (
	"fmt"
	"slices"
	"strings"
)

// GraphError reports structural problems in a set of category declarations.
// The engine itself never enforces these; tooling calls ValidateGraph.
type GraphError struct {
	// Cycles lists each dependency cycle as a path that ends where it starts.
	Cycles [][]string
	// Unknown maps a category key to the dependency keys that are not declared.
	Unknown map[string][]string
	// Duplicates lists keys declared more than once.
	Duplicates []string
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	var parts []string
	for _, key := range e.Duplicates {
		parts = append(parts, fmt.Sprintf("duplicate category %q", key))
	}
	keys := make([]string, 0, len(e.Unknown))
	for k := range e.Unknown {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("category %q depends on unknown %s", k, strings.Join(e.Unknown[k], ", ")))
	}
	for _, c := range e.Cycles {
		parts = append(parts, "dependency cycle: "+strings.Join(c, " → "))
	}
	return strings.Join(parts, "; ")
}

// ValidateGraph checks that every dependency names a declared category, that keys
// are unique, and that the dependency graph is acyclic. All entries of DependsOn
// are checked, including those the resolver does not consult.
func ValidateGraph(cats []Category) error {
	declared := make(map[string][]string, len(cats))
	gerr := &GraphError{Unknown: make(map[string][]string)}

	var order []string
	for _, c := range cats {
		if _, dup := declared[c.Key]; dup {
			gerr.Duplicates = append(gerr.Duplicates, c.Key)
			continue
		}
		declared[c.Key] = c.DependsOn
		order = append(order, c.Key)
	}

	for _, key := range order {
		for _, dep := range declared[key] {
			if _, ok := declared[dep]; !ok {
				gerr.Unknown[key] = append(gerr.Unknown[key], dep)
			}
		}
	}

	gerr.Cycles = findCycles(order, declared)

	if len(gerr.Cycles) == 0 && len(gerr.Unknown) == 0 && len(gerr.Duplicates) == 0 {
		return nil
	}
	return gerr
}

// findCycles walks the graph depth-first and records each back edge as a cycle.
func findCycles(order []string, edges map[string][]string) [][]string {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(order))
	var stack []string
	var cycles [][]string

	var visit func(string)
	visit = func(node string) {
		color[node] = grey
		stack = append(stack, node)
		for _, next := range edges[node] {
			if _, known := edges[next]; !known {
				continue
			}
			switch color[next] {
			case white:
				visit(next)
			case grey:
				start := slices.Index(stack, next)
				cycle := slices.Clone(stack[start:])
				cycles = append(cycles, append(cycle, next))
			}
		}
		stack = stack[:len(stack)-1]
		color[node] = black
	}

	for _, node := range order {
		if color[node] == white {
			visit(node)
		}
	}
	return cycles
}

// TopoOrder returns category keys so that every category comes after the
// categories it depends on. Callers must have validated the graph first.
func TopoOrder(cats []Category) []string {
	deps := make(map[string][]string, len(cats))
	for _, c := range cats {
		deps[c.Key] = c.DependsOn
	}
	seen := make(map[string]bool, len(cats))
	var out []string
	var visit func(string)
	visit = func(key string) {
		if seen[key] {
			return
		}
		seen[key] = true
		for _, d := range deps[key] {
			if _, ok := deps[d]; ok {
				visit(d)
			}
		}
		out = append(out, key)
	}
	for _, c := range cats {
		visit(c.Key)
	}
	return out
}
