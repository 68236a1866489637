// Package errors defines the error types shared by the build tasks.
//
// Input errors (malformed CSS, bad template syntax, unresolved JS imports)
// are fatal to the task that owns them and carry enough position information
// to point the user at the offending file. Missing source directories are
// not errors anywhere in the pipeline; writers create destination parents
// on demand.
package errors

import (
	"errors"
	"fmt"
)

// TaskError wraps a failure with the name of the build task that produced
// it, and optionally the file being processed when it happened.
type TaskError struct {
	Task string
	Path string
	Err  error
}

func (e *TaskError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("task %s: %s: %v", e.Task, e.Path, e.Err)
	}
	return fmt.Sprintf("task %s: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// Task wraps err with the owning task name. Returns nil for a nil err so
// task bodies can end with `return errors.Task(name, run())`.
func Task(task string, err error) error {
	if err == nil {
		return nil
	}
	return &TaskError{Task: task, Err: err}
}

// TaskFile is Task with the file under processing attached.
func TaskFile(task, path string, err error) error {
	if err == nil {
		return nil
	}
	return &TaskError{Task: task, Path: path, Err: err}
}

// SyntaxError reports a parse failure at a position inside a source file.
// Line and Col are 1-based; zero means unknown.
type SyntaxError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
	case e.File != "":
		return fmt.Sprintf("%s: %s", e.File, e.Msg)
	default:
		return e.Msg
	}
}

// Syntaxf builds a SyntaxError at a known position.
func Syntaxf(file string, line, col int, format string, args ...any) error {
	return &SyntaxError{File: file, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// IsSyntax reports whether any error in err's chain is a SyntaxError.
func IsSyntax(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}
