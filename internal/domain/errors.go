// Package domain defines core types, interfaces, and errors for csvmerge.
package domain

import "fmt"

// FileReadError indicates an input file is missing or cannot be parsed as CSV.
type FileReadError struct {
	Path    string
	Message string
	Err     error
}

func (e *FileReadError) Error() string { return withCause(e.Message, e.Err) }
func (e *FileReadError) Unwrap() error { return e.Err }

// SchemaError indicates a loaded table lacks a required column.
type SchemaError struct {
	Column  string
	Message string
}

func (e *SchemaError) Error() string { return e.Message }

// MergeError indicates the outer join itself failed.
type MergeError struct {
	Message string
	Err     error
}

func (e *MergeError) Error() string { return withCause(e.Message, e.Err) }
func (e *MergeError) Unwrap() error { return e.Err }

// MissingColumnError indicates the summary column is absent from the merged table.
type MissingColumnError struct {
	Column  string
	Message string
}

func (e *MissingColumnError) Error() string { return e.Message }

// FileWriteError indicates the output destination could not be created or written.
type FileWriteError struct {
	Path    string
	Message string
	Err     error
}

func (e *FileWriteError) Error() string { return withCause(e.Message, e.Err) }
func (e *FileWriteError) Unwrap() error { return e.Err }

func withCause(msg string, err error) string {
	if err == nil {
		return msg
	}
	return msg + ": " + err.Error()
}

// ErrFileRead creates a FileReadError for path wrapping err.
func ErrFileRead(path string, err error, format string, args ...interface{}) *FileReadError {
	return &FileReadError{Path: path, Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrSchema creates a SchemaError for the missing column.
func ErrSchema(column, format string, args ...interface{}) *SchemaError {
	return &SchemaError{Column: column, Message: fmt.Sprintf(format, args...)}
}

// ErrMerge creates a MergeError wrapping err.
func ErrMerge(err error, format string, args ...interface{}) *MergeError {
	return &MergeError{Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrMissingColumn creates a MissingColumnError for column.
func ErrMissingColumn(column, format string, args ...interface{}) *MissingColumnError {
	return &MissingColumnError{Column: column, Message: fmt.Sprintf(format, args...)}
}

// ErrFileWrite creates a FileWriteError for path wrapping err.
func ErrFileWrite(path string, err error, format string, args ...interface{}) *FileWriteError {
	return &FileWriteError{Path: path, Message: fmt.Sprintf(format, args...), Err: err}
}
