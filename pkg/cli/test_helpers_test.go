package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"csvmerge/internal/config"
)

// isolateEnv points HOME at a temp dir and clears CSVMERGE_* variables so
// no real configuration leaks into a test.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{
		config.EnvEngine, config.EnvLogLevel, config.EnvOutfile, config.EnvOutput,
		config.EnvS3Endpoint, config.EnvS3Region, config.EnvS3KeyID, config.EnvS3Secret, config.EnvS3URLStyle,
	} {
		t.Setenv(k, "")
	}
	return home
}

// runCmd executes a fresh root command and returns stdout, stderr and the error.
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
