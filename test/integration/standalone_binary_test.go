package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildUnpack compiles cmd/unpack and copies it into an empty directory so
// nothing resolves relative to the repository.
func buildUnpack(t *testing.T) (binary, dir string) {
	t.Helper()
	gomod, err := exec.Command("go", "env", "GOMOD").Output()
	require.NoError(t, err)
	repoRoot := filepath.Dir(strings.TrimSpace(string(gomod)))
	require.NotEqual(t, ".", repoRoot, "go env GOMOD returned empty")

	built := filepath.Join(t.TempDir(), "unpack")
	build := exec.Command("go", "build", "-o", built, "./cmd/unpack")
	build.Dir = repoRoot
	out, err := build.CombinedOutput()
	require.NoError(t, err, string(out))

	dir = t.TempDir()
	binary = filepath.Join(dir, "unpack")
	data, err := os.ReadFile(built)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(binary, data, 0o755))
	return binary, dir
}

func run(dir, binary string, args ...string) (string, error) {
	cmd := exec.Command(binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "HOME="+dir, "XDG_CONFIG_HOME="+dir)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestStandaloneBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("standalone binary test is unix-focused")
	}
	binary, dir := buildUnpack(t)

	t.Run("extended version", func(t *testing.T) {
		out, err := run(dir, binary, "version", "--extended")
		require.NoError(t, err, out)
		assert.True(t, strings.HasPrefix(out, "unpack "), out)
		assert.Contains(t, out, "Gofulmen: ")
		assert.Contains(t, out, "Crucible: ")
	})

	t.Run("help lists commands", func(t *testing.T) {
		out, err := run(dir, binary, "--help")
		require.NoError(t, err, out)
		for _, name := range []string{"serve", "simplify", "verify", "cache"} {
			assert.Contains(t, out, name)
		}
	})

	t.Run("simplify without text fails", func(t *testing.T) {
		out, err := run(dir, binary, "simplify")
		require.Error(t, err)
		assert.Contains(t, out, "no text provided")
	})
}
