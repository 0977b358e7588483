package core

import (
	"fmt"
	"io"
	"strings"
)

// File is a single CSV handed to a module.
type File struct {
	Name    string
	Size    int64
	Content io.Reader
}

// UploadSource tells how the file reached the control.
type UploadSource string

const (
	SourcePicker UploadSource = "picker"
	SourceDrop   UploadSource = "drop"
)

// ParseUploadSource maps a form value to a source. Anything unknown is
// treated as the picker, which applies no extension rule.
func ParseUploadSource(s string) UploadSource {
	if UploadSource(strings.ToLower(strings.TrimSpace(s))) == SourceDrop {
		return SourceDrop
	}
	return SourcePicker
}

func (s UploadSource) String() string { return string(s) }

// HasCSVExtension reports whether name ends in ".csv", ignoring case.
func HasCSVExtension(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".csv")
}

// UploadControl applies the file acceptance rules of the upload widget and
// forwards accepted files to OnUpload. It keeps no memory of earlier files,
// so the same file can be submitted any number of times.
type UploadControl struct {
	Disabled bool
	OnUpload func(File)
}

// Select handles a file chosen with the picker. A nil or unnamed file is
// ignored.
func (c UploadControl) Select(f *File) bool {
	if c.Disabled || f == nil || f.Name == "" {
		return false
	}
	c.emit(*f)
	return true
}

// Drop handles a file dropped onto the control. Only ".csv" names pass.
func (c UploadControl) Drop(f *File) bool {
	if c.Disabled || f == nil || f.Name == "" {
		return false
	}
	if !HasCSVExtension(f.Name) {
		return false
	}
	c.emit(*f)
	return true
}

// Accept dispatches to Select or Drop by source.
func (c UploadControl) Accept(source UploadSource, f *File) bool {
	if source == SourceDrop {
		return c.Drop(f)
	}
	return c.Select(f)
}

func (c UploadControl) emit(f File) {
	if c.OnUpload != nil {
		c.OnUpload(f)
	}
}

// Describe renders a short human label for logs and CLI output.
func (f File) Describe() string {
	return fmt.Sprintf("%s (%d bytes)", f.Name, f.Size)
}
