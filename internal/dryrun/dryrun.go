package dryrun

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/glefebvre/mediasort/internal/classifier"
	apperrors "github.com/glefebvre/mediasort/internal/errors"
	"github.com/glefebvre/mediasort/internal/processor"
	"github.com/glefebvre/mediasort/internal/storage"
)

// Action represents what a run would do with one source file
type Action struct {
	Path           string                     `json:"path"`
	Kind           processor.ActionKind       `json:"kind"`
	Target         string                     `json:"target,omitempty"`
	Classification *classifier.Classification `json:"classification,omitempty"`
	Conflict       bool                       `json:"conflict,omitempty"` // target already taken
}

// ClusterPlan is a group of movies that would share a folder
type ClusterPlan struct {
	Folder  string   `json:"folder"`
	Members []string `json:"members"`
}

// Summary provides aggregate statistics
type Summary struct {
	Deletes    int `json:"deletes"`
	Moves      int `json:"moves"`
	Skips      int `json:"skips"`
	Conflicts  int `json:"conflicts"`
	Clusters   int `json:"clusters"`
	Regrouped  int `json:"regrouped"`
	PrunedDirs int `json:"pruned_dirs"`
}

// Plan represents the result of a dry-run analysis
type Plan struct {
	Timestamp   string        `json:"timestamp"`
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	Actions     []Action      `json:"actions"`
	Clusters    []ClusterPlan `json:"clusters"`
	PrunedDirs  []string      `json:"pruned_dirs"`
	Summary     Summary       `json:"summary"`
}

// Analyzer performs dry-run analysis
type Analyzer struct {
	processor *processor.Processor
}

// NewAnalyzer creates a new dry-run analyzer over the decisions of p
func NewAnalyzer(p *processor.Processor) *Analyzer {
	return &Analyzer{processor: p}
}

// Analyze walks the source like a real run and projects every phase without
// touching the filesystem.
func (a *Analyzer) Analyze() (*Plan, error) {
	opts := a.processor.Options()

	info, err := os.Stat(opts.SourceDir)
	if err != nil {
		return nil, apperrors.FilesystemError("stat", opts.SourceDir, err)
	}
	if !info.IsDir() {
		return nil, apperrors.FilesystemError("stat", opts.SourceDir, fmt.Errorf("not a directory"))
	}

	files, err := storage.ListFiles(opts.SourceDir)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Timestamp:   time.Now().Format(time.RFC3339),
		Source:      opts.SourceDir,
		Destination: opts.DestDir,
		Actions:     make([]Action, 0, len(files)),
		Clusters:    make([]ClusterPlan, 0),
		PrunedDirs:  make([]string, 0),
	}

	claimed := make(map[string]bool)
	remaining := make([]string, 0)
	for _, file := range files {
		decision := a.processor.Decide(file)
		action := Action{Path: file.Path, Kind: decision.Kind}

		switch decision.Kind {
		case processor.ActionDelete:
			plan.Summary.Deletes++

		case processor.ActionSkip:
			plan.Summary.Skips++
			remaining = append(remaining, file.Path)

		case processor.ActionMove:
			classification := decision.Classification
			action.Target = decision.Target
			action.Classification = &classification
			if filepath.Clean(file.Path) != filepath.Clean(decision.Target) {
				if claimed[decision.Target] || exists(decision.Target) {
					action.Conflict = true
					plan.Summary.Conflicts++
				}
			}
			claimed[decision.Target] = true
			plan.Summary.Moves++
			remaining = append(remaining, decision.Target)
		}

		plan.Actions = append(plan.Actions, action)
	}

	if err := a.projectRegroup(plan); err != nil {
		return nil, err
	}
	if err := a.projectPrune(plan, remaining); err != nil {
		return nil, err
	}

	return plan, nil
}

// projectRegroup clusters the movies that would sit at the Movies root
// once reconcile is done.
func (a *Analyzer) projectRegroup(plan *Plan) error {
	moviesDir := a.processor.MoviesFolder()

	existing, err := storage.ListRootFiles(moviesDir)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(existing))
	movies := make([]storage.FileEntry, 0, len(existing))
	for _, movie := range existing {
		seen[movie.Path] = true
		movies = append(movies, movie)
	}
	for _, action := range plan.Actions {
		if action.Kind != processor.ActionMove || filepath.Dir(action.Target) != moviesDir {
			continue
		}
		if !seen[action.Target] {
			seen[action.Target] = true
			movies = append(movies, storage.NewFileEntry(action.Target))
		}
	}
	sort.Slice(movies, func(i, j int) bool { return movies[i].Name < movies[j].Name })

	for _, group := range a.processor.GroupMovies(movies) {
		if len(group) < 2 {
			continue
		}
		cluster := ClusterPlan{
			Folder:  filepath.Join(moviesDir, movies[group[0]].Stem),
			Members: make([]string, 0, len(group)),
		}
		for _, idx := range group {
			cluster.Members = append(cluster.Members, movies[idx].Path)
		}
		plan.Clusters = append(plan.Clusters, cluster)
		plan.Summary.Clusters++
		plan.Summary.Regrouped += len(group)
	}
	return nil
}

// projectPrune lists the source directories left without any file
func (a *Analyzer) projectPrune(plan *Plan, remaining []string) error {
	dirs, err := storage.ListDirs(a.processor.Options().SourceDir)
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		prefix := dir + string(filepath.Separator)
		occupied := false
		for _, path := range remaining {
			if strings.HasPrefix(path, prefix) {
				occupied = true
				break
			}
		}
		if !occupied {
			plan.PrunedDirs = append(plan.PrunedDirs, dir)
		}
	}

	storage.SortDeepestFirst(plan.PrunedDirs)
	plan.Summary.PrunedDirs = len(plan.PrunedDirs)
	return nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
