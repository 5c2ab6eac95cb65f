package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"

	"github.com/glefebvre/mediasort/internal/classifier"
	"github.com/glefebvre/mediasort/internal/dryrun"
	"github.com/glefebvre/mediasort/internal/processor"
)

func TestNewRenderer_PlainForBuffers(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	assert.False(t, r.styled)
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]column{left("Name"), right("Count")}, [][]string{{"a", "1"}, {"b"}}, false)

	assert.Contains(t, strings.ToUpper(out), "NAME")
	assert.Contains(t, out, "| a    |     1 |")
	assert.NotContains(t, out, "╭")

	styled := renderTable([]column{left("Name")}, [][]string{{"a"}}, true)
	assert.Contains(t, styled, "╭")

	assert.Equal(t, "", renderTable(nil, nil, false))
}

func TestRenderTable_ColumnColors(t *testing.T) {
	text.EnableColors()

	columns := []column{left("Status").colored(statusColors), left("Detail")}
	rows := [][]string{{StatusError, "missing"}}

	plain := renderTable(columns, rows, false)
	assert.NotContains(t, plain, "\x1b[")

	styled := renderTable(columns, rows, true)
	assert.Contains(t, styled, text.Colors{text.FgRed, text.Bold}.Sprint(StatusError))
	assert.NotContains(t, styled, text.Colors{text.FgRed, text.Bold}.Sprint("missing"))
}

func TestStatistics(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).Statistics(&processor.Statistics{
		RunID:      "run-1",
		Discovered: 7,
		Moved:      4,
		PrunedDirs: 2,
		Duration:   1500 * time.Millisecond,
	})

	out := buf.String()
	assert.Contains(t, out, "== Run run-1 ==")
	assert.Contains(t, out, "Discovered")
	assert.Contains(t, out, "Pruned directories")
	assert.Contains(t, out, "1.5s")
	assert.NotContains(t, out, "\x1b[")
}

func TestPlan(t *testing.T) {
	src, dest := "/downloads", "/library"
	series := classifier.Classification{Kind: classifier.KindSeries, SeriesName: "Show", Season: "01"}

	plan := &dryrun.Plan{
		Timestamp:   "2026-01-01T00:00:00Z",
		Source:      src,
		Destination: dest,
		Actions: []dryrun.Action{
			{
				Path:           filepath.Join(src, "Show.S01E02.mkv"),
				Kind:           processor.ActionMove,
				Target:         filepath.Join(dest, "Series", "Show", "Season 01", "Show.S01E02.mkv"),
				Classification: &series,
			},
			{Path: filepath.Join(src, "info.nfo"), Kind: processor.ActionDelete},
		},
		Clusters: []dryrun.ClusterPlan{{
			Folder:  filepath.Join(dest, "Movies", "Film"),
			Members: []string{filepath.Join(dest, "Movies", "Film.mkv"), filepath.Join(dest, "Movies", "Film.2.mkv")},
		}},
		PrunedDirs: []string{filepath.Join(src, "extras")},
		Summary:    dryrun.Summary{Moves: 1, Deletes: 1, Clusters: 1, Regrouped: 2, PrunedDirs: 1},
	}

	var buf bytes.Buffer
	NewRenderer(&buf).Plan(plan)
	out := buf.String()

	assert.Contains(t, out, "Series/Show/Season 01/Show.S01E02.mkv")
	assert.Contains(t, out, "info.nfo")
	assert.Contains(t, out, "series")
	assert.Contains(t, out, "Movies/Film")
	assert.Contains(t, out, "Film.2.mkv")
	assert.Contains(t, out, "== Directories to prune ==")
	assert.Contains(t, out, "  extras\n")
	assert.Contains(t, out, "Conflicts")
}

func TestClassifications(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).Classifications([]ClassificationRow{{
		Name:           "[GRP] Film.mkv",
		Classification: classifier.Classification{Kind: classifier.KindMovie, CleanedName: "Film.mkv"},
		Target:         "/library/Movies/Film.mkv",
	}})

	out := buf.String()
	assert.Contains(t, out, "[GRP] Film.mkv")
	assert.Contains(t, out, "movie")
	assert.Contains(t, out, "/library/Movies/Film.mkv")
}

func TestChecks(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).Checks("Environment", []CheckResult{
		{Name: "Source", Passed: true, Detail: "/downloads (read/write ok)"},
		{Name: "Devices", Passed: true, Warn: true, Detail: "different devices"},
		{Name: "Destination", Passed: false, Detail: "missing"},
	})

	out := buf.String()
	assert.Contains(t, out, "== Environment ==")
	assert.Contains(t, out, "| Source      | OK     | /downloads (read/write ok) |")
	assert.Contains(t, out, "| Devices     | WARN   | different devices          |")
	assert.Contains(t, out, "| Destination | ERROR  | missing                    |")
}

func TestCheckResult_Status(t *testing.T) {
	tests := []struct {
		name   string
		result CheckResult
		want   string
	}{
		{"passed", CheckResult{Passed: true}, StatusOK},
		{"warning", CheckResult{Passed: true, Warn: true}, StatusWarn},
		{"failed", CheckResult{Warn: true}, StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Status())
		})
	}
}

func TestRelative(t *testing.T) {
	assert.Equal(t, "a/b.mkv", relative("/src", "/src/a/b.mkv"))
	assert.Equal(t, "/elsewhere/b.mkv", relative("/src", "/elsewhere/b.mkv"))
	assert.Equal(t, "", relative("/src", ""))
}
