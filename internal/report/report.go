package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/glefebvre/mediasort/internal/classifier"
	"github.com/glefebvre/mediasort/internal/dryrun"
	"github.com/glefebvre/mediasort/internal/processor"
)

// Check statuses
const (
	StatusOK    = "OK"
	StatusWarn  = "WARN"
	StatusError = "ERROR"
)

var headingColors = text.Colors{text.FgBlue, text.Bold}

// Renderer writes human readable tables. Rounded borders and colors are
// only used when the output is a terminal.
type Renderer struct {
	out    io.Writer
	styled bool
}

// NewRenderer creates a renderer for w
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{out: w, styled: isTerminal(w)}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (r *Renderer) section(title string) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if r.styled {
		line = headingColors.Sprint(line)
		rule = headingColors.Sprint(rule)
	}
	fmt.Fprintln(r.out, line)
	fmt.Fprintln(r.out, rule)
}

func (r *Renderer) table(columns []column, rows [][]string) {
	fmt.Fprintln(r.out, renderTable(columns, rows, r.styled))
}

func actionColors(kind string) text.Colors {
	switch processor.ActionKind(kind) {
	case processor.ActionDelete:
		return text.Colors{text.FgRed}
	case processor.ActionMove:
		return text.Colors{text.FgGreen}
	default:
		return text.Colors{text.FgYellow}
	}
}

func noteColors(note string) text.Colors {
	if strings.Contains(note, "conflict") {
		return text.Colors{text.FgRed, text.Bold}
	}
	return nil
}

func statusColors(status string) text.Colors {
	switch status {
	case StatusOK:
		return text.Colors{text.FgGreen}
	case StatusWarn:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgRed, text.Bold}
	}
}

var metricColumns = []column{left("Metric"), right("Value")}

// Statistics renders the counters of a finished run
func (r *Renderer) Statistics(stats *processor.Statistics) {
	if stats == nil {
		return
	}

	r.section("Run " + stats.RunID)
	rows := [][]string{
		{"Discovered", strconv.Itoa(stats.Discovered)},
		{"Processed", strconv.Itoa(stats.Processed)},
		{"Moved", strconv.Itoa(stats.Moved)},
		{"  series", strconv.Itoa(stats.Series)},
		{"  movies", strconv.Itoa(stats.Movies)},
		{"Deleted", strconv.Itoa(stats.Deleted)},
		{"Skipped", strconv.Itoa(stats.Skipped)},
		{"Movie clusters", strconv.Itoa(stats.Clusters)},
		{"Regrouped", strconv.Itoa(stats.Regrouped)},
		{"Pruned directories", strconv.Itoa(stats.PrunedDirs)},
		{"Duration", stats.Duration.Round(time.Millisecond).String()},
	}
	r.table(metricColumns, rows)
}

// Plan renders a dry-run plan
func (r *Renderer) Plan(plan *dryrun.Plan) {
	if plan == nil {
		return
	}

	r.section("Dry run " + plan.Timestamp)
	fmt.Fprintf(r.out, "Source:      %s\nDestination: %s\n\n", plan.Source, plan.Destination)

	if len(plan.Actions) > 0 {
		rows := make([][]string, 0, len(plan.Actions))
		for _, action := range plan.Actions {
			note := ""
			if action.Classification != nil {
				note = string(action.Classification.Kind)
			}
			if action.Conflict {
				note = strings.TrimSpace(note + " conflict")
			}
			rows = append(rows, []string{
				string(action.Kind),
				relative(plan.Source, action.Path),
				relative(plan.Destination, action.Target),
				note,
			})
		}
		r.table([]column{
			left("Action").colored(actionColors),
			left("File"),
			left("Target"),
			left("Note").colored(noteColors),
		}, rows)
	}

	if len(plan.Clusters) > 0 {
		r.section("Movie clusters")
		rows := make([][]string, 0)
		for _, cluster := range plan.Clusters {
			for _, member := range cluster.Members {
				rows = append(rows, []string{
					relative(plan.Destination, cluster.Folder),
					filepath.Base(member),
				})
			}
		}
		r.table([]column{left("Folder"), left("Member")}, rows)
	}

	if len(plan.PrunedDirs) > 0 {
		r.section("Directories to prune")
		for _, dir := range plan.PrunedDirs {
			fmt.Fprintf(r.out, "  %s\n", relative(plan.Source, dir))
		}
		fmt.Fprintln(r.out)
	}

	s := plan.Summary
	rows := [][]string{
		{"Deletes", strconv.Itoa(s.Deletes)},
		{"Moves", strconv.Itoa(s.Moves)},
		{"Skips", strconv.Itoa(s.Skips)},
		{"Conflicts", strconv.Itoa(s.Conflicts)},
		{"Movie clusters", strconv.Itoa(s.Clusters)},
		{"Regrouped", strconv.Itoa(s.Regrouped)},
		{"Pruned directories", strconv.Itoa(s.PrunedDirs)},
	}
	r.section("Summary")
	r.table(metricColumns, rows)
}

// ClassificationRow is one classified name with its destination
type ClassificationRow struct {
	Name           string
	Classification classifier.Classification
	Target         string
}

// Classifications renders the outcome of classifying names
func (r *Renderer) Classifications(items []ClassificationRow) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		c := item.Classification
		rows = append(rows, []string{
			item.Name,
			string(c.Kind),
			c.SeriesName,
			c.Season,
			c.CleanedName,
			item.Target,
		})
	}
	r.table([]column{
		left("Name"),
		left("Kind"),
		left("Series"),
		right("Season"),
		left("Cleaned"),
		left("Target"),
	}, rows)
}

// CheckResult is the outcome of a single environment check
type CheckResult struct {
	Name   string
	Passed bool
	Warn   bool
	Detail string
}

// Status returns the label shown for the check
func (c CheckResult) Status() string {
	switch {
	case !c.Passed:
		return StatusError
	case c.Warn:
		return StatusWarn
	default:
		return StatusOK
	}
}

// Checks renders environment checks with a colored status column
func (r *Renderer) Checks(title string, results []CheckResult) {
	r.section(title)
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, []string{result.Name, result.Status(), result.Detail})
	}
	r.table([]column{
		left("Check"),
		left("Status").colored(statusColors),
		left("Detail"),
	}, rows)
}

func relative(base, path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
