// Package types defines custom error types for ufcsort.
package types

import "fmt"

// ErrNoEventNumber indicates no event number could be extracted,
// even after the parent folder fallback
type ErrNoEventNumber struct {
	Name string
}

func (e ErrNoEventNumber) Error() string {
	return fmt.Sprintf("unable to extract event number from %s", e.Name)
}

// ErrDuplicateTarget indicates the computed target already exists
type ErrDuplicateTarget struct {
	Path string
}

func (e ErrDuplicateTarget) Error() string {
	return fmt.Sprintf("file %s already exists", e.Path)
}

// ErrSameResolution indicates an existing file has the same edition and
// resolution and replacement is disabled
type ErrSameResolution struct {
	Existing string
}

func (e ErrSameResolution) Error() string {
	return fmt.Sprintf("file %s already exists with the same resolution", e.Existing)
}

// ErrLowerResolution indicates the incoming file ranks below the existing one
type ErrLowerResolution struct {
	Existing string
}

func (e ErrLowerResolution) Error() string {
	return fmt.Sprintf("file %s already exists with a higher resolution", e.Existing)
}

// ErrIO indicates a filesystem operation failed
type ErrIO struct {
	Op   string
	Path string
	Err  error
}

func (e ErrIO) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e ErrIO) Unwrap() error {
	return e.Err
}

// ErrConfigInvalid indicates a configuration error
type ErrConfigInvalid struct {
	Path   string
	Reason string
}

func (e ErrConfigInvalid) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid config: %s", e.Reason)
	}
	return fmt.Sprintf("invalid config %s: %s", e.Path, e.Reason)
}

// ErrUnsafeName indicates a rendered folder or file name is not path-safe
type ErrUnsafeName struct {
	Name   string
	Reason string
}

func (e ErrUnsafeName) Error() string {
	return fmt.Sprintf("unsafe name %q: %s", e.Name, e.Reason)
}

// ErrNoVideoFiles indicates a job directory holds no recognized video file
type ErrNoVideoFiles struct {
	Directory string
}

func (e ErrNoVideoFiles) Error() string {
	return fmt.Sprintf("no video files found in %s", e.Directory)
}

// ErrJournalEmpty indicates there is nothing recorded to undo
type ErrJournalEmpty struct{}

func (e ErrJournalEmpty) Error() string {
	return "journal is empty"
}
