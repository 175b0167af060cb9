package types

import (
	"fmt"
	"strings"
)

// Bracket is the decoration applied to a field in file names
type Bracket string

const (
	BracketNone   Bracket = "none"
	BracketSquare Bracket = "square"
	BracketCurly  Bracket = "curly"
	BracketRound  Bracket = "round"
)

// ParseBracket parses a bracket style; an empty string means none
func ParseBracket(s string) (Bracket, error) {
	switch b := Bracket(strings.ToLower(strings.TrimSpace(s))); b {
	case "", BracketNone:
		return BracketNone, nil
	case BracketSquare, BracketCurly, BracketRound:
		return b, nil
	}
	return "", fmt.Errorf("unknown bracket style %q", s)
}

// Wrap decorates value with the bracket style
func (b Bracket) Wrap(value string) string {
	switch b {
	case BracketSquare:
		return "[" + value + "]"
	case BracketCurly:
		return "{" + value + "}"
	case BracketRound:
		return "(" + value + ")"
	default:
		return value
	}
}

// Template maps a descriptor to folder and file names.
// Order always contains FieldEventNumber, has at least two fields and no duplicates.
type Template struct {
	Order         []Field
	Brackets      map[Field]Bracket
	Folder        FieldSet
	SubfolderFile FieldSet
}

// BracketFor returns the decoration of f
func (t *Template) BracketFor(f Field) Bracket {
	if b, ok := t.Brackets[f]; ok {
		return b
	}
	return BracketNone
}
