// Package form implements validated form submission: a declarative schema of
// tagged rules, a single generic validator, canonical payload encoding and a
// controller that drives one submission attempt to a terminal outcome.
package form

// File is a binary attachment held by a file field.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Value is what a user entered for one field. Text fields, optional text and
// enumerated choices use Text; file fields use File.
type Value struct {
	Text string
	File *File
}

// Text wraps a plain string value.
func Text(s string) Value {
	return Value{Text: s}
}

// Attach wraps a file value.
func Attach(f *File) Value {
	return Value{File: f}
}

// IsEmpty reports whether the value carries neither text nor a file.
func (v Value) IsEmpty() bool {
	return v.File == nil && v.Text == ""
}

// Fields maps field names to values.
type Fields map[string]Value

// Clone returns a shallow copy. File contents are shared.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
