package models

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError lists every violated field with a human readable reason.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Check records msg for key when ok is false. The first message per key wins.
func (e *ValidationError) Check(ok bool, key, msg string) {
	if ok {
		return
	}
	if _, exists := e.Fields[key]; !exists {
		e.Fields[key] = msg
	}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
