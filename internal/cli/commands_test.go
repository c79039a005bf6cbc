package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/httpsify/pkg/httpsify"
)

// execute runs the command tree with args and returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HTTPSIFY_NON_INTERACTIVE", "1")

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func readTree(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestRunCmd_ArgsValidation_TooMany(t *testing.T) {
	_, _, err := execute(t, "run", "a", "b")
	require.Error(t, err)
	assert.Equal(t, httpsify.ExitUsageError, httpsify.ExitCodeForError(err))
}

func TestRunCmd_UnknownFlag(t *testing.T) {
	_, _, err := execute(t, "run", "--nope")
	require.Error(t, err)
	assert.Equal(t, httpsify.ExitUsageError, httpsify.ExitCodeForError(err))
}

func TestRunCmd_RewritesTree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.html":     "http://x",
		"a.txt":      "http://x",
		"sub/b.html": "http://y",
	})

	_, stderr, err := execute(t, "run", root)
	require.NoError(t, err)

	assert.Equal(t, "https://x", readTree(t, root, "a.html"))
	assert.Equal(t, "http://x", readTree(t, root, "a.txt"))
	assert.Equal(t, "https://y", readTree(t, root, "sub/b.html"))
	assert.Contains(t, stderr, "start processing ")
	assert.Contains(t, stderr, "finish processing ")
	assert.Contains(t, stderr, "processed 2 directories")
}

func TestRunCmd_DryRunWritesNothing(t *testing.T) {
	root := writeTree(t, map[string]string{"a.html": "http://x"})

	_, stderr, err := execute(t, "run", root, "--dry-run")
	require.NoError(t, err)

	assert.Equal(t, "http://x", readTree(t, root, "a.html"))
	assert.Contains(t, stderr, "dry run")
}

func TestRunCmd_FlagsOverrideConfigFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.htm":         "http://x",
		"b.html":        "http://x",
		"httpsify.yaml": "extensions: [\".html\"]\nreplace:\n  to: \"//\"\n",
	})

	_, _, err := execute(t, "run", root, "--ext", ".htm")
	require.NoError(t, err)

	assert.Equal(t, "//x", readTree(t, root, "a.htm"), "yaml replacement with flag extension")
	assert.Equal(t, "http://x", readTree(t, root, "b.html"))
}

func TestRunCmd_JSONLogs(t *testing.T) {
	root := writeTree(t, map[string]string{"a.html": "http://x"})

	_, stderr, err := execute(t, "run", root, "--log-format", "json")
	require.NoError(t, err)

	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		assert.True(t, strings.HasPrefix(line, "{"), "not a JSON line: %q", line)
	}
	assert.Contains(t, stderr, `"msg":"start processing `)
}

func TestRunCmd_MissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	_, stderr, err := execute(t, "run", missing)
	require.Error(t, err)
	assert.Equal(t, httpsify.ExitRootUnavailable, httpsify.ExitCodeForError(err))
	assert.Equal(t, 1, strings.Count(stderr, "[ERROR]"))
	assert.Contains(t, stderr, "ListError")
}

func TestRunCmd_PartialFailure(t *testing.T) {
	root := writeTree(t, map[string]string{
		"good.html": "http://x",
		"bad.html":  "http://x \xff",
	})

	_, stderr, err := execute(t, "run", root)
	require.Error(t, err)
	assert.Equal(t, httpsify.ExitPartialFailure, httpsify.ExitCodeForError(err))
	assert.Equal(t, "https://x", readTree(t, root, "good.html"))
	assert.Contains(t, stderr, "ReadError")
}

func TestRunCmd_InvalidConfig(t *testing.T) {
	root := writeTree(t, map[string]string{"a.html": "http://x"})

	_, _, err := execute(t, "run", root, "--from", "")
	require.Error(t, err)
	assert.Equal(t, httpsify.ExitConfigError, httpsify.ExitCodeForError(err))
	assert.Equal(t, "http://x", readTree(t, root, "a.html"))
}

func TestRunCmd_EnvFile(t *testing.T) {
	root := writeTree(t, map[string]string{"a.html": "http://x"})
	envFile := filepath.Join(t.TempDir(), "prod.env")
	require.NoError(t, os.WriteFile(envFile, []byte("HTTPSIFY_TO=https://secure.\n"), 0644))

	_, _, err := execute(t, "run", root, "--env-file", envFile)
	require.NoError(t, err)
	assert.Equal(t, "https://secure.x", readTree(t, root, "a.html"))
}

func TestConfigCmd_PrintsEffectiveYAML(t *testing.T) {
	root := writeTree(t, map[string]string{"httpsify.yaml": "max_concurrent: 4\n"})

	stdout, _, err := execute(t, "config", root, "--from", "http://cdn")
	require.NoError(t, err)

	assert.Contains(t, stdout, "root: "+root)
	assert.Regexp(t, `from: "?http://cdn"?\n`, stdout)
	assert.Regexp(t, `to: "?https://"?\n`, stdout)
	assert.Contains(t, stdout, "max_concurrent: 4")
	assert.Contains(t, stdout, "- .html")
}

func TestWatchCmd_ArgsValidation_TooMany(t *testing.T) {
	_, _, err := execute(t, "watch", "a", "b")
	require.Error(t, err)
	assert.Equal(t, httpsify.ExitUsageError, httpsify.ExitCodeForError(err))
}

func TestWatchCmd_MissingRoot(t *testing.T) {
	_, _, err := execute(t, "watch", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, httpsify.ExitRootUnavailable, httpsify.ExitCodeForError(err))
}
