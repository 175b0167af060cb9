package matcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dinghy6/sabnzbd-scripts/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatcher(t *testing.T, root string) *Matcher {
	t.Helper()
	m, err := New("UFC", root)
	require.NoError(t, err)
	return m
}

func TestParse(t *testing.T) {
	m := newMatcher(t, "")

	tests := []struct {
		name     string
		input    string
		expected types.Descriptor
	}{
		{
			"Dot Separated PPV",
			"UFC.300.Pereira.vs.Hill.1080p.WEB-DL.h264",
			types.Descriptor{EventNumber: "UFC 300", FighterNames: "Pereira vs Hill", Resolution: "1080p"},
		},
		{
			"Fight Night",
			"UFC Fight Night 248 Yan vs Figueiredo 1080p",
			types.Descriptor{EventNumber: "UFC Fight Night 248", FighterNames: "Yan vs Figueiredo", Resolution: "1080p"},
		},
		{
			"Broadcast Event",
			"ufc_on_espn_52_prelims_720p",
			types.Descriptor{EventNumber: "UFC on ESPN 52", Edition: types.EditionPrelims, Resolution: "720p"},
		},
		{
			"Early Prelims 4K",
			"UFC 299 Early Prelims 4K",
			types.Descriptor{EventNumber: "UFC 299", Edition: types.EditionEarlyPrelims, Resolution: "2160p"},
		},
		{
			"Preliminary Synonym UHD",
			"UFC 298 Preliminary UHD",
			types.Descriptor{EventNumber: "UFC 298", Edition: types.EditionPrelims, Resolution: "2160p"},
		},
		{
			"PPV Excluded From Names",
			"UFC 296 Edwards vs Covington PPV 1080i",
			types.Descriptor{EventNumber: "UFC 296", FighterNames: "Edwards vs Covington", Resolution: "1080i"},
		},
		{
			"Main Event Excluded From Names",
			"UFC 309 Main Event Jones vs Miocic",
			types.Descriptor{EventNumber: "UFC 309", FighterNames: "Jones vs Miocic"},
		},
		{
			"Rematch Digit",
			"UFC 295 Jones vs Miocic 2 720p",
			types.Descriptor{EventNumber: "UFC 295", FighterNames: "Jones vs Miocic 2", Resolution: "720p"},
		},
		{
			"Two Digit Number Is Not A Rematch",
			"UFC 295 Jones vs Miocic 20",
			types.Descriptor{EventNumber: "UFC 295", FighterNames: "Jones vs Miocic"},
		},
		{
			"Casing Normalized",
			"ufc 229 KHABIB vs mcgregor",
			types.Descriptor{EventNumber: "UFC 229", FighterNames: "Khabib vs Mcgregor"},
		},
		{
			"Last Bout Wins",
			"UFC 300 Pereira vs Hill 1080p Holloway vs Gaethje",
			types.Descriptor{EventNumber: "UFC 300", FighterNames: "Holloway vs Gaethje", Resolution: "1080p"},
		},
		{
			"Rendered Name",
			"UFC 300 Pereira vs Hill {edition-Early Prelims} [1080p]",
			types.Descriptor{EventNumber: "UFC 300", FighterNames: "Pereira vs Hill", Edition: types.EditionEarlyPrelims, Resolution: "1080p"},
		},
		{
			"Resolution Glued To Source Tag",
			"UFC.300.Pereira.vs.Hill.WEBRip1080p",
			types.Descriptor{EventNumber: "UFC 300", FighterNames: "Pereira vs Hill", Resolution: "1080p"},
		},
		{
			"Resolution Glued To Codec",
			"UFC 300 Pereira vs Hill 1080pHEVC",
			types.Descriptor{EventNumber: "UFC 300", FighterNames: "Pereira vs Hill", Resolution: "1080p"},
		},
		{
			"Resolution After HDTV",
			"UFC 300 Pereira vs Hill HDTV720p",
			types.Descriptor{EventNumber: "UFC 300", FighterNames: "Pereira vs Hill", Resolution: "720p"},
		},
		{
			"Glued UHD",
			"UFC 300 Prelims WEBUHD",
			types.Descriptor{EventNumber: "UFC 300", Edition: types.EditionPrelims, Resolution: "2160p"},
		},
		{
			"Too Many Digits",
			"UFC 30000 Nobody vs Anybody",
			types.Descriptor{FighterNames: "Nobody vs Anybody"},
		},
		{
			"No Event",
			"RandomMovie",
			types.Descriptor{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.Parse(tt.input))
		})
	}
}

func TestNew_DefaultPromotion(t *testing.T) {
	m, err := New("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultPromotion, m.Promotion())
}

func TestEventNumber_Priority(t *testing.T) {
	m := newMatcher(t, "")

	// the numbered form wins even when it appears later in the name
	assert.Equal(t, "UFC 300", m.EventNumber("UFC Fight Night 12 UFC 300"))
	assert.Equal(t, "UFC Fight Night 12", m.EventNumber("UFC Fight Night 12 UFC on ABC 6"))
}

func TestNew_CustomPromotion(t *testing.T) {
	m, err := New("PFL", "")
	require.NoError(t, err)

	assert.Equal(t, "PFL", m.Promotion())
	assert.Equal(t, "PFL 7", m.Parse("pfl.7.1080p").EventNumber)
	assert.Empty(t, m.Parse("UFC 300").EventNumber)
}

func TestExtract_ParentFolderFallback(t *testing.T) {
	m := newMatcher(t, "")

	desc, err := m.Extract(filepath.Join("downloads", "UFC 300 Pereira vs Hill", "Video.mkv"), false)
	require.NoError(t, err)
	assert.Equal(t, "UFC 300", desc.EventNumber)
	assert.Equal(t, "Pereira vs Hill", desc.FighterNames)

	// the fallback is atomic: the resolution comes from the folder too
	desc, err = m.Extract(filepath.Join("downloads", "UFC.301.Prelims.1080p", "sample 720p.mkv"), false)
	require.NoError(t, err)
	assert.Equal(t, "UFC 301", desc.EventNumber)
	assert.Equal(t, types.EditionPrelims, desc.Edition)
	assert.Equal(t, "1080p", desc.Resolution)
}

func TestExtract_FileNameTakesPrecedence(t *testing.T) {
	m := newMatcher(t, "")

	desc, err := m.Extract(filepath.Join("UFC 299 Foo vs Bar", "UFC 300 Pereira vs Hill 720p.mkv"), true)
	require.NoError(t, err)
	assert.Equal(t, "UFC 300", desc.EventNumber)
	assert.Equal(t, "720p", desc.Resolution)
}

func TestExtract_NoEventNumber(t *testing.T) {
	m := newMatcher(t, "")
	path := filepath.Join("downloads", "movies", "RandomMovie.mkv")

	_, err := m.Extract(path, true)
	var noEvent types.ErrNoEventNumber
	require.True(t, errors.As(err, &noEvent))
	assert.Equal(t, "RandomMovie.mkv", noEvent.Name)

	desc, err := m.Extract(path, false)
	require.NoError(t, err)
	assert.Empty(t, desc.EventNumber)
	assert.Equal(t, path, desc.SourcePath)
}

func TestExtract_NameSearch(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "UFC 3000 Wrong vs Event")
	mkdir(t, root, "UFC 300 Pereira vs Hill")
	mkdir(t, root, "UFC 301", "UFC 301 Pantoja vs Erceg {edition-Main Event} [1080p].mkv")
	mkdir(t, root, "UFC 302", "UFC 302", "UFC 302 Makhachev vs Poirier.mkv")

	m := newMatcher(t, root)

	tests := []struct {
		name     string
		file     string
		strict   bool
		expected string
	}{
		{"Top Level Folder", "UFC.300.1080p.mkv", true, "Pereira vs Hill"},
		{"One Level Down", "UFC.301.Prelims.mkv", true, "Pantoja vs Erceg"},
		{"Beyond Depth", "UFC.302.mkv", true, ""},
		{"Non Strict Skips Search", "UFC.300.1080p.mkv", false, ""},
		{"Unknown Event", "UFC.305.mkv", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := m.Extract(filepath.Join("downloads", tt.file), tt.strict)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, desc.FighterNames)
		})
	}
}

func TestFindNames_SymlinkCycle(t *testing.T) {
	root := t.TempDir()
	dir := mkdir(t, root, "UFC 303")
	if err := os.Symlink(dir, filepath.Join(dir, "UFC 303 again")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	m := newMatcher(t, root)
	assert.Empty(t, m.FindNames("UFC 303"))
}

// mkdir creates the nested path under root. A final element with an
// extension is created as an empty file.
func mkdir(t *testing.T, root string, parts ...string) string {
	t.Helper()
	path := filepath.Join(append([]string{root}, parts...)...)

	last := parts[len(parts)-1]
	if filepath.Ext(last) == ".mkv" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
		return path
	}
	require.NoError(t, os.MkdirAll(path, 0755))
	return path
}

func TestExtract_NamesFromEventFolder(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "UFC 300 Pereira vs Hill", "Prelims", "UFC 300 {Prelims} [1080p].mkv")
	m := newMatcher(t, root)

	desc, err := m.Extract(file, false)
	require.NoError(t, err)
	assert.Equal(t, "UFC 300", desc.EventNumber)
	assert.Equal(t, "Pereira vs Hill", desc.FighterNames)
	assert.Equal(t, types.EditionPrelims, desc.Edition)

	// another event's folder does not lend its names
	desc, err = m.Extract(filepath.Join(root, "UFC 299 Foo vs Bar", "UFC 300.mkv"), false)
	require.NoError(t, err)
	assert.Empty(t, desc.FighterNames)

	// neither does a folder outside the library
	desc, err = m.Extract(filepath.Join(t.TempDir(), "UFC 300 Pereira vs Hill", "UFC.300.mkv"), false)
	require.NoError(t, err)
	assert.Empty(t, desc.FighterNames)
}
