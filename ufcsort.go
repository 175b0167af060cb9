// Package ufcsort sorts UFC releases into a media library.
//
// It exposes the same operations as the ufcsort command for use from other
// Go programs.
package ufcsort

import (
	"github.com/dinghy6/sabnzbd-scripts/internal/api"
	"github.com/dinghy6/sabnzbd-scripts/internal/types"
)

type (
	Option       = api.Option
	Options      = api.Options
	Descriptor   = types.Descriptor
	Operation    = types.Operation
	JournalEntry = types.JournalEntry
	Event        = types.Event
	EventHandler = types.EventHandler
)

const (
	StatusSuccess = types.StatusSuccess
	StatusSkipped = types.StatusSkipped
	StatusFailed  = types.StatusFailed
)

var (
	WithConfig         = api.WithConfig
	WithSettings       = api.WithSettings
	WithDestination    = api.WithDestination
	WithCategory       = api.WithCategory
	WithStrict         = api.WithStrict
	WithReplaceSameRes = api.WithReplaceSameRes
	WithDryRun         = api.WithDryRun
	WithTagging        = api.WithTagging
	WithNoJournal      = api.WithNoJournal
	WithRemoveEmpty    = api.WithRemoveEmpty
	WithForce          = api.WithForce
	WithEventHandler   = api.WithEventHandler
	WithLogger         = api.WithLogger
)

var (
	Place                  = api.Place
	Organize               = api.Organize
	Parse                  = api.Parse
	Watch                  = api.Watch
	Tag                    = api.Tag
	Init                   = api.Init
	History                = api.History
	Undo                   = api.Undo
	Clean                  = api.Clean
	JournalPath            = api.JournalPath
	ErrorCount             = api.ErrorCount
	SetDefaultEventHandler = api.SetDefaultEventHandler
)
