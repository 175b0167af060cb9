package types

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestEdition_String(t *testing.T) {
	tests := []struct {
		edition  Edition
		expected string
	}{
		{EditionMainEvent, "Main Event"},
		{EditionPrelims, "Prelims"},
		{EditionEarlyPrelims, "Early Prelims"},
	}

	for _, tt := range tests {
		if got := tt.edition.String(); got != tt.expected {
			t.Errorf("Edition(%d).String() = %q, want %q", tt.edition, got, tt.expected)
		}
	}

	var zero Edition
	if zero != EditionMainEvent {
		t.Errorf("zero Edition = %v, want Main Event", zero)
	}
}

func TestParseEdition(t *testing.T) {
	for _, e := range []Edition{EditionMainEvent, EditionPrelims, EditionEarlyPrelims} {
		got, ok := ParseEdition(e.String())
		if !ok || got != e {
			t.Errorf("ParseEdition(%q) = %v, %v", e.String(), got, ok)
		}
	}

	if _, ok := ParseEdition("weigh-ins"); ok {
		t.Error("expected unknown edition to fail")
	}
}

func TestParseField(t *testing.T) {
	for _, f := range AllFields {
		got, err := ParseField(f.String())
		if err != nil {
			t.Fatalf("ParseField(%q) error = %v", f.String(), err)
		}
		if got != f {
			t.Errorf("ParseField(%q) = %v, want %v", f.String(), got, f)
		}
	}

	if _, err := ParseField("title"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestDescriptor_Value(t *testing.T) {
	d := Descriptor{
		EventNumber:  "UFC 300",
		FighterNames: "Pereira vs Hill",
		Edition:      EditionPrelims,
		Resolution:   "1080p",
	}

	tests := []struct {
		field    Field
		expected string
	}{
		{FieldEventNumber, "UFC 300"},
		{FieldFighterNames, "Pereira vs Hill"},
		{FieldEdition, "Prelims"},
		{FieldResolution, "1080p"},
	}

	for _, tt := range tests {
		if got := d.Value(tt.field); got != tt.expected {
			t.Errorf("Value(%v) = %q, want %q", tt.field, got, tt.expected)
		}
	}
}

func TestBracket_Wrap(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "1080p"},
		{"none", "1080p"},
		{"square", "[1080p]"},
		{"CURLY", "{1080p}"},
		{"round", "(1080p)"},
	}

	for _, tt := range tests {
		b, err := ParseBracket(tt.input)
		if err != nil {
			t.Fatalf("ParseBracket(%q) error = %v", tt.input, err)
		}
		if got := b.Wrap("1080p"); got != tt.expected {
			t.Errorf("%q.Wrap() = %q, want %q", tt.input, got, tt.expected)
		}
	}

	if _, err := ParseBracket("angle"); err == nil {
		t.Error("expected error for unknown bracket")
	}
}

func TestErrIO_Unwrap(t *testing.T) {
	err := fmt.Errorf("placing: %w", ErrIO{Op: "remove", Path: "/x", Err: os.ErrPermission})

	var ioErr ErrIO
	if !errors.As(err, &ioErr) {
		t.Fatal("expected ErrIO in chain")
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Error("expected wrapped os.ErrPermission")
	}
}
