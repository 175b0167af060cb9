// Package formatter renders descriptors into library folder and file names.
package formatter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dinghy6/sabnzbd-scripts/internal/types"
)

const unsafeChars = `\/:*?"<>|`

// Formatter maps descriptors to target paths under a library root
type Formatter struct {
	root      string
	subfolder string
	tmpl      types.Template
}

// New creates a formatter. subfolder, when set, receives every edition
// other than the main event.
func New(root, subfolder string, tmpl types.Template) (*Formatter, error) {
	if err := ValidateTemplate(tmpl); err != nil {
		return nil, err
	}
	if subfolder != "" {
		if err := ValidName(subfolder); err != nil {
			return nil, types.ErrConfigInvalid{Reason: fmt.Sprintf("subfolder: %v", err)}
		}
	}
	return &Formatter{root: root, subfolder: subfolder, tmpl: tmpl}, nil
}

// Render returns the folder name and the file name (without extension)
func (f *Formatter) Render(desc types.Descriptor) (folder, file string) {
	sub := f.subfolderActive(desc)

	var folderTokens, fileTokens []string
	for _, field := range f.tmpl.Order {
		value := desc.Value(field)
		if value == "" {
			continue
		}

		if f.tmpl.Folder.Has(field) {
			folderTokens = append(folderTokens, value)
		}

		if sub && !f.tmpl.SubfolderFile.Has(field) {
			continue
		}
		if field == types.FieldEdition && !sub {
			value = "edition-" + value
		}
		fileTokens = append(fileTokens, f.tmpl.BracketFor(field).Wrap(value))
	}

	return strings.Join(folderTokens, " "), strings.Join(fileTokens, " ")
}

// Target computes the target directory and file name for desc. ext is the
// source extension including its dot.
func (f *Formatter) Target(desc types.Descriptor, ext string) (dir, file string, err error) {
	folder, name := f.Render(desc)
	if err := ValidName(folder); err != nil {
		return "", "", err
	}

	file = name + ext
	if err := ValidName(file); err != nil {
		return "", "", err
	}

	dir = filepath.Join(f.root, folder)
	if f.subfolderActive(desc) {
		dir = filepath.Join(dir, f.subfolder)
	}
	return dir, file, nil
}

// TargetPath is Target joined into a single path
func (f *Formatter) TargetPath(desc types.Descriptor, ext string) (string, error) {
	dir, file, err := f.Target(desc, ext)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, file), nil
}

func (f *Formatter) subfolderActive(desc types.Descriptor) bool {
	return f.subfolder != "" && desc.Edition != types.EditionMainEvent
}

// ValidName checks that name is usable as a single path element
func ValidName(name string) error {
	if name == "" {
		return types.ErrUnsafeName{Name: name, Reason: "empty"}
	}
	if strings.TrimSpace(name) != name {
		return types.ErrUnsafeName{Name: name, Reason: "leading or trailing whitespace"}
	}
	if i := strings.IndexAny(name, unsafeChars); i >= 0 {
		return types.ErrUnsafeName{Name: name, Reason: fmt.Sprintf("contains %q", name[i])}
	}
	return nil
}

// ValidateTemplate checks the field order of a template
func ValidateTemplate(t types.Template) error {
	if len(t.Order) < 2 {
		return types.ErrConfigInvalid{Reason: "format order needs at least two fields"}
	}

	seen := make(map[types.Field]bool, len(t.Order))
	for _, field := range t.Order {
		if seen[field] {
			return types.ErrConfigInvalid{Reason: fmt.Sprintf("format order repeats %s", field)}
		}
		seen[field] = true
	}

	if !seen[types.FieldEventNumber] {
		return types.ErrConfigInvalid{Reason: "format order must contain event_number"}
	}
	return nil
}
