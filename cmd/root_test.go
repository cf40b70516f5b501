package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes a fresh command tree with a .env path that does not exist,
// so only the test's environment is read.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))

	envFile := filepath.Join(t.TempDir(), "missing.env")
	root.SetArgs(append(args, "--env-file", envFile))

	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "inboxsort version 1.2.3\n", out.String())
}

func TestValidateTransport(t *testing.T) {
	for _, transport := range []string{"http", "stdio", "streamable-http"} {
		assert.NoError(t, validateTransport(transport), transport)
	}
	assert.Error(t, validateTransport("sse"))
	assert.Error(t, validateTransport(""))
}

func TestServeCmd_UnsupportedTransport(t *testing.T) {
	_, err := runCLI(t, "", "serve", "--transport", "sse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport type")
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	_, err := runCLI(t, "", "generate-docs", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging configuration")
}

func TestGenerateDocs(t *testing.T) {
	out, err := runCLI(t, "", "generate-docs")
	require.NoError(t, err)

	assert.Contains(t, out, "# MCP Tools Reference")
	assert.Contains(t, out, "## Gmail Tools")
	assert.Contains(t, out, "### gmail_fetch_messages")
	assert.Contains(t, out, "- `access_token` (string, required)")
	assert.Contains(t, out, "- `count` (number, optional)")
	assert.Contains(t, out, "## Classification Tools")
	assert.Contains(t, out, "### classify_messages")
	assert.Contains(t, out, "- `emails` (array, required)")
}

func TestToolCategory(t *testing.T) {
	assert.Equal(t, "Gmail Tools", toolCategory("gmail_fetch_messages"))
	assert.Equal(t, "Classification Tools", toolCategory("classify_messages"))
	assert.Equal(t, "Other", toolCategory("unknown"))
}
