package program

import "fmt"

// CompileError reports an invalid node.
type CompileError struct {
	Path    string
	Line    int
	Message string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}
