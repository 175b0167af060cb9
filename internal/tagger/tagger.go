// Package tagger embeds event metadata into placed files using mkvpropedit
// (MKV) and AtomicParsley (MP4/M4V).
package tagger

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/dinghy6/sabnzbd-scripts/internal/types"
)

const (
	mkvBin = "mkvpropedit"
	mp4Bin = "atomicparsley"
)

// TagInfo contains the metadata to embed into a media file.
type TagInfo struct {
	Title      string // "UFC 300: Pereira vs Hill"
	Collection string // promotion, e.g. "UFC"
	Event      string // event number, e.g. "UFC 300"
	Edition    string
	Resolution string
}

// Tagger tags files with metadata built from their descriptor
type Tagger struct {
	promotion string
}

var _ types.Tagger = (*Tagger)(nil)

// New creates a tagger for the given promotion
func New(promotion string) *Tagger {
	return &Tagger{promotion: promotion}
}

// Tag implements types.Tagger
func (t *Tagger) Tag(ctx context.Context, path string, desc types.Descriptor) error {
	return TagFile(ctx, path, InfoFor(t.promotion, desc))
}

// InfoFor builds tag metadata from a descriptor
func InfoFor(promotion string, desc types.Descriptor) TagInfo {
	title := desc.EventNumber
	if desc.FighterNames != "" {
		title += ": " + desc.FighterNames
	}
	if desc.Edition != types.EditionMainEvent {
		title += " (" + desc.Edition.String() + ")"
	}
	return TagInfo{
		Title:      title,
		Collection: promotion,
		Event:      desc.EventNumber,
		Edition:    desc.Edition.String(),
		Resolution: desc.Resolution,
	}
}

// IsAvailable returns true if at least one supported tagging tool is in $PATH.
func IsAvailable() bool {
	return IsMKVAvailable() || IsMP4Available()
}

// IsMKVAvailable returns true if mkvpropedit is in $PATH.
func IsMKVAvailable() bool {
	_, err := exec.LookPath(mkvBin)
	return err == nil
}

// IsMP4Available returns true if AtomicParsley is in $PATH.
func IsMP4Available() bool {
	_, err := exec.LookPath(mp4Bin)
	return err == nil
}

// isTaggable returns true if the file format is supported for tagging.
func isTaggable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mkv", ".mp4", ".m4v":
		return true
	}
	return false
}

// TagFile embeds metadata into a media file, dispatching on extension:
//   - .mkv         → mkvpropedit
//   - .mp4/.m4v    → AtomicParsley
//
// Unsupported extensions are skipped. A missing tool for a supported
// format is an error.
func TagFile(ctx context.Context, path string, info TagInfo) error {
	if !isTaggable(path) {
		return nil
	}

	if strings.EqualFold(filepath.Ext(path), ".mkv") {
		if !IsMKVAvailable() {
			return fmt.Errorf("mkvpropedit not found; cannot tag %s", filepath.Base(path))
		}
		return tagMKV(ctx, path, info)
	}

	if !IsMP4Available() {
		return fmt.Errorf("atomicparsley not found; cannot tag %s", filepath.Base(path))
	}
	return tagMP4(ctx, path, info)
}

func tagMKV(ctx context.Context, path string, info TagInfo) error {
	tmpFile, err := os.CreateTemp("", "ufcsort-tags-*.xml")
	if err != nil {
		return fmt.Errorf("failed to create temp tag file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if err := writeTagXML(tmpFile, info); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write tag XML: %w", err)
	}
	tmpFile.Close()

	args := []string{
		path,
		"--edit", "info",
		"--set", fmt.Sprintf("title=%s", info.Title),
		"--tags", fmt.Sprintf("all:%s", tmpFile.Name()),
	}

	cmd := exec.CommandContext(ctx, mkvBin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mkvpropedit failed: %w\noutput: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// tagXMLTemplate is the Matroska global tag XML format. Values are
// escaped by the template's xml helper.
const tagXMLTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE Tags SYSTEM "matroskatags.dtd">
<Tags>
  <Tag>
    <Targets>
      <TargetTypeValue>70</TargetTypeValue>
      <TargetType>COLLECTION</TargetType>
    </Targets>
    <Simple>
      <Name>TITLE</Name>
      <String>{{xml .Collection}}</String>
    </Simple>
  </Tag>
  <Tag>
    <Targets>
      <TargetTypeValue>50</TargetTypeValue>
      <TargetType>EDITION</TargetType>
    </Targets>
    <Simple>
      <Name>TITLE</Name>
      <String>{{xml .Title}}</String>
    </Simple>
    <Simple>
      <Name>SUBTITLE</Name>
      <String>{{xml .Edition}}</String>
    </Simple>{{if .Resolution}}
    <Simple>
      <Name>COMMENT</Name>
      <String>{{xml .Resolution}}</String>
    </Simple>{{end}}
  </Tag>
</Tags>
`

var tagTmpl = template.Must(template.New("tags").Funcs(template.FuncMap{
	"xml": xmlEscape,
}).Parse(tagXMLTemplate))

func xmlEscape(s string) string {
	var b strings.Builder
	template.HTMLEscape(&b, []byte(s))
	return b.String()
}

func writeTagXML(w io.Writer, info TagInfo) error {
	return tagTmpl.Execute(w, info)
}

func tagMP4(ctx context.Context, path string, info TagInfo) error {
	args := []string{path, "--overWrite"}

	if info.Title != "" {
		args = append(args, "--title", info.Title)
	}
	if info.Collection != "" {
		args = append(args, "--album", info.Collection)
		args = append(args, "--artist", info.Collection)
	}
	if info.Edition != "" {
		args = append(args, "--description", info.Edition)
	}
	args = append(args, "--stik", "Movie")

	cmd := exec.CommandContext(ctx, mp4Bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("AtomicParsley failed: %w\noutput: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
