package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/httpsify/internal/logging"
	"github.com/vvka-141/httpsify/pkg/httpsify"
)

func TestLogReportErrors_WritesEveryFailure(t *testing.T) {
	var errs []error
	for i := 0; i < 8; i++ {
		errs = append(errs, httpsify.NewRewriteError(httpsify.ReadError, fmt.Sprintf("/site/f%d.html", i), errors.New("denied")))
	}

	var buf bytes.Buffer
	logReportErrors(logging.NewConsoleLoggerTo(&buf, false), httpsify.Report{Root: "/site", Errors: errs})

	out := buf.String()
	assert.Equal(t, 8, strings.Count(out, "[ERROR]"))
	for i := 0; i < 8; i++ {
		assert.Contains(t, out, fmt.Sprintf("ReadError /site/f%d.html: denied", i))
	}
}

func TestLogReportErrors_NoErrorsWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	logReportErrors(logging.NewConsoleLoggerTo(&buf, false), httpsify.Report{Root: "/site"})
	assert.Empty(t, buf.String())
}

func TestRunCmd_JSONLogsCarryRunID(t *testing.T) {
	root := writeTree(t, map[string]string{"a.html": "http://x", "b.html": "http://y"})

	_, stderr, err := execute(t, "run", root, "--log-format", "json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Contains(t, line, `"run_id":"`, "missing run_id: %q", line)
	}
}
