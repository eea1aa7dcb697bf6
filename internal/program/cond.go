package program

import (
	"gopkg.in/yaml.v3"
)

var comparisons = map[string]func(v, n int64) bool{
	"lt": func(v, n int64) bool { return v < n },
	"le": func(v, n int64) bool { return v <= n },
	"gt": func(v, n int64) bool { return v > n },
	"ge": func(v, n int64) bool { return v >= n },
	"eq": func(v, n int64) bool { return v == n },
	"ne": func(v, n int64) bool { return v != n },
}

// parseCond reads a {op: N} condition on the current value.
func parseCond(path string, n *yaml.Node) (func(int64) bool, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, errorAt(path, n, "condition must be a mapping with one of lt, le, gt, ge, eq, ne")
	}
	op := n.Content[0].Value
	cmp, ok := comparisons[op]
	if !ok {
		return nil, errorAt(path, n.Content[0], "unknown comparison %q", op)
	}
	limit, err := intArg(path+"."+op, n.Content[1])
	if err != nil {
		return nil, err
	}
	return func(v int64) bool { return cmp(v, limit) }, nil
}
