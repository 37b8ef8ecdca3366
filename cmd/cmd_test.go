package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/strokepipe/core"
	"github.com/gaurav-prasanna/strokepipe/core/acquire"
)

const yiRecord = `<Stroke><Outline><MoveTo x=\"10\" y=\"5.5\"/><LineTo x=\"20\" y=\"5.5\"/></Outline><Track><MoveTo x=\"10\" y=\"5.5\"/></Track></Stroke>`

func newDictionaryServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("ID") {
		case "19968":
			fmt.Fprintf(w, `<html><body><div id="svg"></div><script>var xml = {}; xml[19968]="%s";</script></body></html>`, yiRecord)
		case "19969":
			fmt.Fprint(w, `<html><body>ID Miss!</body></html>`)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeTestConfig(t *testing.T, dir, baseURL string) string {
	t.Helper()
	content := fmt.Sprintf(`
[source]
url_template = %q
settle_delay_seconds = 0

[renderer]
kind = "http"

[paths]
raw_dir = %q
normalized_dir = %q
snapshot_dir = %q
outcome_log = %q
`,
		baseURL+"/dictView.jsp?ID={id}&la={lang}",
		filepath.Join(dir, "data"),
		filepath.Join(dir, "json"),
		filepath.Join(dir, "snapshots"),
		filepath.Join(dir, "download_log.txt"),
	)
	path := filepath.Join(dir, "strokepipe.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAcquireNormalizePreview(t *testing.T) {
	dir := t.TempDir()
	srv := newDictionaryServer(t)
	cfgPath := writeTestConfig(t, dir, srv.URL)

	out, err := execute(t, "--config", cfgPath, "acquire", "--range", "19968-19970")
	require.NoError(t, err)
	require.Contains(t, out, "Acquiring 3 characters")
	require.Contains(t, out, "[1/3] ✓ U+4E00 saved")
	require.Contains(t, out, "[2/3] ✗ U+4E01 missing")
	require.Contains(t, out, "[3/3] ✗ U+4E02 missing")
	require.Contains(t, out, "OUTCOME")

	raw, err := os.ReadFile(filepath.Join(dir, "data", "4E00.xml"))
	require.NoError(t, err)
	require.Equal(t, strings.ReplaceAll(yiRecord, `\"`, `"`), string(raw))

	logData, err := os.ReadFile(filepath.Join(dir, "download_log.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(logData)), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "id=U+4E01")
	require.Contains(t, lines[1], "id=U+4E02")
	for _, line := range lines {
		require.Contains(t, line, `msg="ID Miss!"`)
	}

	// A second sweep renders nothing already stored.
	out, err = execute(t, "--config", cfgPath, "acquire", "--range", "19968-19968")
	require.NoError(t, err)
	require.Contains(t, out, "already-present")

	out, err = execute(t, "--config", cfgPath, "normalize")
	require.NoError(t, err)
	require.Contains(t, out, "Found 1 records to normalize")

	normalized, err := os.ReadFile(filepath.Join(dir, "json", "4E00.json"))
	require.NoError(t, err)
	require.JSONEq(t,
		`[{"outline":[{"type":"M","x":10,"y":5.5},{"type":"L","x":20,"y":5.5}],"track":[{"x":10,"y":5.5}]}]`,
		string(normalized))
	require.Contains(t, string(normalized), "\n  {\n    \"outline\": [")

	pdfPath := filepath.Join(dir, "preview", "4E00.pdf")
	out, err = execute(t, "--config", cfgPath, "preview", "U+4E00", "--output", pdfPath)
	require.NoError(t, err)
	require.Contains(t, out, "1 strokes")
	pdf, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestAcquireRejectsBadRange(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, "http://127.0.0.1:1")

	_, err := execute(t, "--config", cfgPath, "acquire", "--range", "9FFF-4E00")
	require.Error(t, err)
}

func TestPreviewWithoutNormalizedRecord(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, "http://127.0.0.1:1")

	_, err := execute(t, "--config", cfgPath, "preview", "U+4E00")
	require.ErrorContains(t, err, "run normalize first")
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "conf", "strokepipe.toml")

	out, err := execute(t, "config", "init", "--path", target)
	require.NoError(t, err)
	require.Contains(t, out, target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Contains(t, string(data), "[source]")

	_, err = execute(t, "config", "init", "--path", target)
	require.ErrorContains(t, err, "already exists")

	_, err = execute(t, "config", "init", "--path", target, "--overwrite")
	require.NoError(t, err)
}

func TestSummarizeAcquisitionListsEveryOutcome(t *testing.T) {
	table := summarizeAcquisition(acquire.Report{Results: []acquire.Result{
		{ID: 0x4E00, Outcome: core.OutcomeSaved},
		{ID: 0x4E01, Outcome: core.OutcomeMissing},
	}})
	// The rounded style upper-cases headers.
	require.Contains(t, table, "OUTCOME")
	for _, label := range []string{"saved", "already-present", "missing", "extraction-failure", "total"} {
		require.Contains(t, table, label)
	}
	require.Contains(t, table, "2")
	require.NotContains(t, table, "io failure")
}
