package cli

import (
	"testing"

	"github.com/dinghy6/sabnzbd-scripts/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobFromArgs(t *testing.T) {
	t.Setenv("SAB_VERSION", "")
	flagCategory = "ufc"
	t.Cleanup(func() { flagCategory = "" })

	path, category, err := jobFromArgs([]string{"/downloads/job"})
	require.NoError(t, err)
	assert.Equal(t, "/downloads/job", path)
	assert.Equal(t, "ufc", category)
}

func TestJobFromArgs_SABnzbd(t *testing.T) {
	t.Setenv("SAB_VERSION", "4.3.2")
	t.Setenv("SAB_COMPLETE_DIR", "/complete/UFC.300")
	t.Setenv("SAB_CAT", "ufc")

	assert.True(t, sabMode())
	path, category, err := jobFromArgs([]string{"ignored", "positional"})
	require.NoError(t, err)
	assert.Equal(t, "/complete/UFC.300", path)
	assert.Equal(t, "ufc", category)

	t.Setenv("SAB_COMPLETE_DIR", "")
	_, _, err = jobFromArgs(nil)
	assert.Error(t, err)
}

func TestRootArgs(t *testing.T) {
	t.Setenv("SAB_VERSION", "")
	assert.Error(t, RootCmd.Args(RootCmd, nil))
	assert.NoError(t, RootCmd.Args(RootCmd, []string{"/downloads/job"}))

	t.Setenv("SAB_VERSION", "4.3.2")
	assert.NoError(t, RootCmd.Args(RootCmd, []string{"a", "b", "c"}))
}

func TestCommonOptions(t *testing.T) {
	settings = config.Default()
	flagDest, flagDryRun = "/lib", true
	t.Cleanup(func() { flagDest, flagDryRun = "", false })

	assert.Len(t, commonOptions(), 3)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "12345678", shortID("1234567890"))
	assert.Equal(t, "abc", shortID("abc"))
}
