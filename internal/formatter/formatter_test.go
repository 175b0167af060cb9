package formatter

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/dinghy6/sabnzbd-scripts/internal/matcher"
	"github.com/dinghy6/sabnzbd-scripts/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTemplate() types.Template {
	return types.Template{
		Order: []types.Field{types.FieldEventNumber, types.FieldFighterNames, types.FieldEdition, types.FieldResolution},
		Brackets: map[types.Field]types.Bracket{
			types.FieldEdition:    types.BracketCurly,
			types.FieldResolution: types.BracketSquare,
		},
		Folder:        types.NewFieldSet(types.FieldEventNumber, types.FieldFighterNames),
		SubfolderFile: types.NewFieldSet(types.FieldEventNumber, types.FieldEdition, types.FieldResolution),
	}
}

func TestTarget(t *testing.T) {
	root := filepath.Join("lib", "Sport")
	full := types.Descriptor{EventNumber: "UFC 300", FighterNames: "Pereira vs Hill", Resolution: "1080p"}

	prelims := full
	prelims.Edition = types.EditionPrelims

	sparse := types.Descriptor{EventNumber: "UFC 300", Edition: types.EditionPrelims}

	tests := []struct {
		name      string
		subfolder string
		desc      types.Descriptor
		dir       string
		file      string
	}{
		{
			"Main Event",
			"",
			full,
			filepath.Join(root, "UFC 300 Pereira vs Hill"),
			"UFC 300 Pereira vs Hill {edition-Main Event} [1080p].mkv",
		},
		{
			"Missing Fields Skipped",
			"",
			sparse,
			filepath.Join(root, "UFC 300"),
			"UFC 300 {edition-Prelims}.mkv",
		},
		{
			"Subfolder For Prelims",
			"Extras",
			prelims,
			filepath.Join(root, "UFC 300 Pereira vs Hill", "Extras"),
			"UFC 300 {Prelims} [1080p].mkv",
		},
		{
			"Subfolder Ignored For Main Event",
			"Extras",
			full,
			filepath.Join(root, "UFC 300 Pereira vs Hill"),
			"UFC 300 Pereira vs Hill {edition-Main Event} [1080p].mkv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(root, tt.subfolder, defaultTemplate())
			require.NoError(t, err)

			dir, file, err := f.Target(tt.desc, ".mkv")
			require.NoError(t, err)
			assert.Equal(t, tt.dir, dir)
			assert.Equal(t, tt.file, file)
		})
	}
}

func TestRender_EditionInFolderIsRaw(t *testing.T) {
	tmpl := defaultTemplate()
	tmpl.Folder = types.NewFieldSet(types.FieldEventNumber, types.FieldEdition)
	tmpl.Brackets[types.FieldResolution] = types.BracketRound

	f, err := New("lib", "", tmpl)
	require.NoError(t, err)

	folder, file := f.Render(types.Descriptor{EventNumber: "UFC 301", Edition: types.EditionEarlyPrelims, Resolution: "720p"})
	assert.Equal(t, "UFC 301 Early Prelims", folder)
	assert.Equal(t, "UFC 301 {edition-Early Prelims} (720p)", file)
}

func TestTarget_UnsafeName(t *testing.T) {
	f, err := New("lib", "", defaultTemplate())
	require.NoError(t, err)

	_, err = f.TargetPath(types.Descriptor{EventNumber: "UFC 300", FighterNames: "A/B vs C"}, ".mkv")
	var unsafe types.ErrUnsafeName
	require.True(t, errors.As(err, &unsafe))

	tmpl := defaultTemplate()
	tmpl.Folder = types.NewFieldSet(types.FieldResolution)
	f, err = New("lib", "", tmpl)
	require.NoError(t, err)

	_, err = f.TargetPath(types.Descriptor{EventNumber: "UFC 300"}, ".mkv")
	require.True(t, errors.As(err, &unsafe))
	assert.Equal(t, "empty", unsafe.Reason)
}

func TestValidName(t *testing.T) {
	valid := []string{"UFC 300 Pereira vs Hill", "Extras", "UFC 300 {edition-Prelims} [1080p].mkv"}
	for _, name := range valid {
		assert.NoError(t, ValidName(name), name)
	}

	invalid := []string{"", " UFC 300", "UFC 300 ", "UFC: 300", "a*b", "what?", `say "hi"`, "<x>", "a|b", `a\b`}
	for _, name := range invalid {
		assert.Error(t, ValidName(name), name)
	}
}

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name    string
		order   []types.Field
		wantErr bool
	}{
		{"Default", []types.Field{types.FieldEventNumber, types.FieldFighterNames, types.FieldEdition, types.FieldResolution}, false},
		{"Two Fields", []types.Field{types.FieldResolution, types.FieldEventNumber}, false},
		{"Single Field", []types.Field{types.FieldEventNumber}, true},
		{"Missing Event Number", []types.Field{types.FieldFighterNames, types.FieldEdition}, true},
		{"Duplicate", []types.Field{types.FieldEventNumber, types.FieldEdition, types.FieldEdition}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := defaultTemplate()
			tmpl.Order = tt.order

			err := ValidateTemplate(tmpl)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var cfgErr types.ErrConfigInvalid
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestNew_UnsafeSubfolder(t *testing.T) {
	_, err := New("lib", "Extras/Prelims", defaultTemplate())
	var cfgErr types.ErrConfigInvalid
	assert.True(t, errors.As(err, &cfgErr))
}

func TestRoundTrip(t *testing.T) {
	m, err := matcher.New("UFC", "")
	require.NoError(t, err)
	f, err := New("lib", "", defaultTemplate())
	require.NoError(t, err)

	events := []string{"UFC 300", "UFC Fight Night 248", "UFC on ESPN 52"}
	editions := []types.Edition{types.EditionMainEvent, types.EditionPrelims, types.EditionEarlyPrelims}
	resolutions := []string{"480p", "720p", "1080i", "2160p"}

	for _, event := range events {
		for _, edition := range editions {
			for _, res := range resolutions {
				desc := types.Descriptor{
					EventNumber:  event,
					FighterNames: "Jones vs Cormier 2",
					Edition:      edition,
					Resolution:   res,
				}

				path, err := f.TargetPath(desc, ".mkv")
				require.NoError(t, err)

				got, err := m.Extract(path, false)
				require.NoError(t, err)
				assert.Equal(t, desc.EventNumber, got.EventNumber, path)
				assert.Equal(t, desc.FighterNames, got.FighterNames, path)
				assert.Equal(t, desc.Edition, got.Edition, path)
				assert.Equal(t, desc.Resolution, got.Resolution, path)
			}
		}
	}
}
