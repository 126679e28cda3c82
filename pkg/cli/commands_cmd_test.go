package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands_ListAll(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := runCmd(t, "commands")
	require.NoError(t, err)
	assert.Contains(t, stdout, "PATH")
	assert.Contains(t, stdout, "csvmerge config set-profile")
	assert.NotContains(t, stdout, "completion")
}

func TestCommands_JSONOutput(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := runCmd(t, "--output", "json", "commands")
	require.NoError(t, err)

	var entries []CommandEntry
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries), "output should be valid JSON")
	require.NotEmpty(t, entries)

	root := entries[0]
	assert.Equal(t, "csvmerge", root.Path)
	flags := map[string]FlagEntry{}
	for _, f := range root.Flags {
		flags[f.Name] = f
	}
	assert.True(t, flags["file1"].Required)
	assert.True(t, flags["file2"].Required)
	assert.False(t, flags["outfile"].Required)
	assert.Equal(t, "combined.csv", flags["outfile"].Default)
	assert.Equal(t, "o", flags["output"].Short)
}

func TestCommands_Filter(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := runCmd(t, "--output", "json", "commands", "--filter", "profile")
	require.NoError(t, err)

	var entries []CommandEntry
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.ElementsMatch(t, []string{"csvmerge config set-profile", "csvmerge config use-profile"}, paths)
}
