// Package rewrite applies a flat symbol table to a JVM artifact. It defines the
// contract hops run against and ships two implementations: a builtin
// constant-pool rewriter and an adapter for an external tiny-remapper jar.
package rewrite

import (
	"context"

	"mcremap/internal/mapping"
)

// Job is one rewrite: Input is read, Output is written, and every symbol in
// Mappings is renamed. Classpath lists extra archives the rewriter may read
// for inheritance; they are never modified.
type Job struct {
	Input     string
	Output    string
	Mappings  *mapping.Set
	Classpath []string
	From      string
	To        string
}

// Rewriter is the bytecode rewrite primitive.
type Rewriter interface {
	Rewrite(ctx context.Context, job Job) error
}

// Func adapts a function to Rewriter.
type Func func(ctx context.Context, job Job) error

// Rewrite calls f.
func (f Func) Rewrite(ctx context.Context, job Job) error {
	return f(ctx, job)
}
