package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/strokepipe/core"
	"github.com/gaurav-prasanna/strokepipe/core/extract"
	"github.com/gaurav-prasanna/strokepipe/core/store"
)

func compact(t *testing.T, strokes []core.Stroke) string {
	t.Helper()
	data, err := json.Marshal(strokes)
	require.NoError(t, err)
	return string(data)
}

func TestParseScenarioFromPage(t *testing.T) {
	page := `xml[19968]="<Stroke><Outline><MoveTo x=\"10\" y=\"5.5\"/><LineTo x=\"20\" y=\"5.5\"/></Outline><Track><MoveTo x=\"10\" y=\"5.5\"/></Track></Stroke>";`
	res := extract.New("").Classify(page, 19968)
	require.Equal(t, extract.VerdictExtracted, res.Verdict)

	strokes, err := NewParser().Parse(res.Payload)
	require.NoError(t, err)
	require.Equal(t,
		`[{"outline":[{"type":"M","x":10,"y":5.5},{"type":"L","x":20,"y":5.5}],"track":[{"x":10,"y":5.5}]}]`,
		compact(t, strokes))
}

func TestParsePreservesOrder(t *testing.T) {
	raw := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<Word>
  <Stroke><Outline><MoveTo x="1" y="1"/></Outline><Track><MoveTo x="3" y="3"/><MoveTo x="2" y="2"/></Track></Stroke>
  <Stroke><Outline><LineTo x="2" y="2"/><MoveTo x="0" y="0"/><QuadTo x1="1" y1="2" x2="3.25" y2="4"/></Outline></Stroke>
  <Stroke><Outline><MoveTo x="1" y="1"/></Outline><Track><MoveTo x="3" y="3"/><MoveTo x="2" y="2"/></Track></Stroke>
</Word>`)

	strokes, err := NewParser().Parse(raw)
	require.NoError(t, err)

	want := []core.Stroke{
		{
			Outline: []core.PathCommand{{Kind: core.MoveTo, X: core.Int(1), Y: core.Int(1)}},
			Track:   []core.Point{{X: core.Int(3), Y: core.Int(3)}, {X: core.Int(2), Y: core.Int(2)}},
		},
		{
			Outline: []core.PathCommand{
				{Kind: core.LineTo, X: core.Int(2), Y: core.Int(2)},
				{Kind: core.MoveTo, X: core.Int(0), Y: core.Int(0)},
				{Kind: core.QuadTo,
					Begin: core.Point{X: core.Int(1), Y: core.Int(2)},
					End:   core.Point{X: core.Float(3.25), Y: core.Int(4)}},
			},
			Track: []core.Point{},
		},
		{
			Outline: []core.PathCommand{{Kind: core.MoveTo, X: core.Int(1), Y: core.Int(1)}},
			Track:   []core.Point{{X: core.Int(3), Y: core.Int(3)}, {X: core.Int(2), Y: core.Int(2)}},
		},
	}
	// Duplicate strokes stay; nothing is reordered or merged.
	if diff := cmp.Diff(compact(t, want), compact(t, strokes)); diff != "" {
		t.Fatalf("strokes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDefaultsAndUnknownElements(t *testing.T) {
	raw := []byte(`<Word>
  <Stroke/>
  <Stroke><Outline><MoveTo y="4"/><Bezier x="1"/><LineTo x="7"/><QuadTo x2="9"/></Outline></Stroke>
  <Stroke><Track><MoveTo/><LineTo x="5" y="5"/></Track><Extra/></Stroke>
  <Metadata><Stroke><Outline><MoveTo x="99" y="99"/></Outline></Stroke></Metadata>
</Word>`)

	strokes, err := NewParser().Parse(raw)
	require.NoError(t, err)
	require.Equal(t,
		`[{"outline":[],"track":[]},`+
			`{"outline":[{"type":"M","x":0,"y":4},{"type":"L","x":7,"y":0},{"type":"Q","begin":{"x":0,"y":0},"end":{"x":9,"y":0}}],"track":[]},`+
			`{"outline":[],"track":[{"x":0,"y":0}]}]`,
		compact(t, strokes))
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":      ``,
		"whitespace": "  \n ",
		"unclosed":   `<Stroke><Outline>`,
		"bad number": `<Stroke><Outline><MoveTo x="ten" y="1"/></Outline></Stroke>`,
		"nan":        `<Stroke><Track><MoveTo x="NaN" y="1"/></Track></Stroke>`,
		"two roots":  `<Stroke/><Stroke/>`,
		"two words":  `<Word><Stroke/></Word><Word><Stroke/></Word>`,
		"trailing":   `<Stroke/>trailing junk`,
		"leading":    `junk<Stroke/>`,
		"text only":  `just text`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewParser().Parse([]byte(raw))
			require.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestParseAllowsProlog(t *testing.T) {
	raw := []byte("<?xml version=\"1.0\"?>\n<!-- U+4E00 -->\n<Stroke><Track><MoveTo x=\"1\" y=\"2\"/></Track></Stroke>\n<!-- end -->\n")
	strokes, err := NewParser().Parse(raw)
	require.NoError(t, err)
	require.Equal(t, `[{"outline":[],"track":[{"x":1,"y":2}]}]`, compact(t, strokes))
}

func TestParseNumericFidelity(t *testing.T) {
	raw := []byte(`<Stroke><Track><MoveTo x="120.0" y="0.1"/><MoveTo x="-3" y="2048"/></Track></Stroke>`)
	strokes, err := NewParser().Parse(raw)
	require.NoError(t, err)
	require.Equal(t, `[{"outline":[],"track":[{"x":120,"y":0.1},{"x":-3,"y":2048}]}]`, compact(t, strokes))
}

func TestRunContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	src, err := store.NewDir(filepath.Join(root, "data"), ".xml", store.Immutable, nil)
	require.NoError(t, err)
	dst, err := store.NewDir(filepath.Join(root, "json"), ".json", store.Overwrite, nil)
	require.NoError(t, err)

	require.NoError(t, src.Write(ctx, 0x4E00, []byte(`<Stroke><Track><MoveTo x="1" y="2"/></Track></Stroke>`)))
	require.NoError(t, src.Write(ctx, 0x4E01, []byte(`<Stroke>`)))
	require.NoError(t, src.Write(ctx, 0x4E02, []byte(`<Word><Stroke/><Stroke/></Word>`)))

	// Existing output is replaced on every run.
	require.NoError(t, dst.Write(ctx, 0x4E00, []byte("stale")))

	var out bytes.Buffer
	report, err := New(&out, nil).Run(ctx, src, dst)
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	failed := report.Failed()
	require.Len(t, failed, 1)
	require.Equal(t, core.CharacterID(0x4E01), failed[0].ID)
	require.ErrorIs(t, failed[0].Err, ErrMalformedRecord)

	got, err := os.ReadFile(filepath.Join(root, "json", "4E00.json"))
	require.NoError(t, err)
	var strokes []core.Stroke
	require.NoError(t, json.Unmarshal(got, &strokes))
	require.Equal(t, `[{"outline":[],"track":[{"x":1,"y":2}]}]`, compact(t, strokes))
	require.Contains(t, string(got), "\n  {")

	_, err = os.Stat(filepath.Join(root, "json", "4E01.json"))
	require.True(t, os.IsNotExist(err))

	ids, err := dst.ListIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []core.CharacterID{0x4E00, 0x4E02}, ids)
	require.Contains(t, out.String(), "Found 3 records")
}

func TestRunNormalizesPaddedRawNames(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	rawDir := filepath.Join(root, "data")
	src, err := store.NewDir(rawDir, ".xml", store.Immutable, nil)
	require.NoError(t, err)
	dst, err := store.NewDir(filepath.Join(root, "json"), ".json", store.Overwrite, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(rawDir, "04E00.XML"), []byte(`<Stroke/>`), 0o644))

	report, err := New(nil, nil).Run(ctx, src, dst)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	require.Empty(t, report.Failed())

	got, err := os.ReadFile(filepath.Join(root, "json", "4E00.json"))
	require.NoError(t, err)
	require.JSONEq(t, `[{"outline":[],"track":[]}]`, string(got))
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	root := t.TempDir()
	src, err := store.NewDir(filepath.Join(root, "data"), ".xml", store.Immutable, nil)
	require.NoError(t, err)
	dst, err := store.NewDir(filepath.Join(root, "json"), ".json", store.Overwrite, nil)
	require.NoError(t, err)
	require.NoError(t, src.Write(ctx, 1, []byte(`<Stroke/>`)))

	cancel()
	_, err = New(nil, nil).Run(ctx, src, dst)
	require.ErrorIs(t, err, context.Canceled)
}
