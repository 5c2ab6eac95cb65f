package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glefebvre/mediasort/internal/classifier"
	apperrors "github.com/glefebvre/mediasort/internal/errors"
	"github.com/glefebvre/mediasort/internal/logger"
	"github.com/glefebvre/mediasort/internal/matcher"
	"github.com/glefebvre/mediasort/internal/storage"
)

// Collision policies for moves onto an existing path
const (
	CollisionFail      = "fail"
	CollisionOverwrite = "overwrite"
)

// Options holds the explicit inputs of a run
type Options struct {
	SourceDir        string
	DestDir          string
	VideoExtensions  []string
	DeleteExtensions []string
	Threshold        float64
	CollisionPolicy  string
}

// Statistics holds run statistics
type Statistics struct {
	RunID      string
	Discovered int
	Processed  int // files not deleted
	Moved      int
	Series     int
	Movies     int
	Deleted    int
	Skipped    int
	Clusters   int // groups of more than one movie
	Regrouped  int // files moved into cluster folders
	PrunedDirs int
	Duration   time.Duration
}

// Fields returns the statistics as structured log fields
func (s *Statistics) Fields() map[string]interface{} {
	return map[string]interface{}{
		"run_id":           s.RunID,
		"discovered":       s.Discovered,
		"processed":        s.Processed,
		"moved":            s.Moved,
		"deleted":          s.Deleted,
		"skipped":          s.Skipped,
		"clusters":         s.Clusters,
		"regrouped":        s.Regrouped,
		"pruned_dirs":      s.PrunedDirs,
		"duration_seconds": s.Duration.Seconds(),
	}
}

// Processor reconciles a downloads directory into the media library
type Processor struct {
	opts       Options
	classifier *classifier.Classifier
	matcher    *matcher.Matcher
	logger     *logger.Logger
	videos     map[string]bool
	deletes    map[string]bool
}

// ActionKind is what reconcile does with a file
type ActionKind string

const (
	ActionDelete ActionKind = "delete"
	ActionMove   ActionKind = "move"
	ActionSkip   ActionKind = "skip"
)

// Decision is the reconcile outcome for a single file.
// Target and Classification are only set for ActionMove.
type Decision struct {
	Kind           ActionKind
	Target         string
	Classification classifier.Classification
}

// NewProcessor creates a new processor instance
func NewProcessor(opts Options, c *classifier.Classifier, log *logger.Logger) (*Processor, error) {
	if c == nil {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "classifier is required")
	}
	if opts.SourceDir == "" {
		return nil, apperrors.ValidationError("source directory is required")
	}
	if opts.DestDir == "" {
		return nil, apperrors.ValidationError("destination directory is required")
	}

	switch opts.CollisionPolicy {
	case "":
		opts.CollisionPolicy = CollisionFail
	case CollisionFail, CollisionOverwrite:
	default:
		return nil, apperrors.New(apperrors.CodeInvalidInput,
			fmt.Sprintf("unknown collision policy %q", opts.CollisionPolicy))
	}

	if log == nil {
		log = logger.AppLogger()
	}

	return &Processor{
		opts:       opts,
		classifier: c,
		matcher:    matcher.New(matcher.Config{Threshold: opts.Threshold}),
		logger:     log,
		videos:     extensionSet(opts.VideoExtensions),
		deletes:    extensionSet(opts.DeleteExtensions),
	}, nil
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			set[ext] = true
		}
	}
	return set
}

// Options returns the options the processor was built with
func (p *Processor) Options() Options {
	return p.opts
}

// MoviesFolder returns the folder movies are moved to and regrouped in
func (p *Processor) MoviesFolder() string {
	return p.classifier.MoviesFolder()
}

// GroupMovies clusters movies by the similarity of their stems and returns
// positions into movies. Regroup and dry runs share it.
func (p *Processor) GroupMovies(movies []storage.FileEntry) [][]int {
	stems := make([]string, len(movies))
	for i, movie := range movies {
		stems[i] = movie.Stem
	}
	return p.matcher.GroupIndices(stems)
}

// Decide returns what reconcile does with file. Deletion wins over moving,
// and a file is moved when its extension is a video one or its raw name
// matches the series pattern.
func (p *Processor) Decide(file storage.FileEntry) Decision {
	if p.deletes[file.Extension] {
		return Decision{Kind: ActionDelete}
	}
	if !p.videos[file.Extension] && !p.classifier.MatchesSeries(file.Name) {
		return Decision{Kind: ActionSkip}
	}

	classification := p.classifier.Classify(file.Name)
	return Decision{
		Kind:           ActionMove,
		Target:         p.classifier.TargetPath(classification),
		Classification: classification,
	}
}

// Run executes preflight, reconcile, movie regrouping and pruning in order.
// On failure the statistics gathered so far are returned with the error.
func (p *Processor) Run() (*Statistics, error) {
	startTime := time.Now()
	stats := &Statistics{RunID: uuid.NewString()}
	log := p.logger.WithFields(map[string]interface{}{"run_id": stats.RunID})

	log.WithFields(map[string]interface{}{
		"source":           p.opts.SourceDir,
		"destination":      p.opts.DestDir,
		"collision_policy": p.opts.CollisionPolicy,
		"threshold":        p.opts.Threshold,
	}).Info("starting run")

	phases := []struct {
		name string
		run  func(*logger.FieldLogger, *Statistics) error
	}{
		{"preflight", p.preflight},
		{"reconcile", p.reconcile},
		{"regroup", p.regroup},
		{"prune", p.prune},
	}

	for _, phase := range phases {
		if err := phase.run(log.WithFields(map[string]interface{}{"phase": phase.name}), stats); err != nil {
			stats.Duration = time.Since(startTime)
			log.WithFields(stats.Fields()).Error(fmt.Sprintf("run aborted during %s", phase.name), err)
			return stats, err
		}
	}

	stats.Duration = time.Since(startTime)
	log.WithFields(stats.Fields()).Info("run completed")
	return stats, nil
}

// preflight checks the source and prepares the destination root
func (p *Processor) preflight(log *logger.FieldLogger, _ *Statistics) error {
	info, err := os.Stat(p.opts.SourceDir)
	if err != nil {
		return apperrors.FilesystemError("stat", p.opts.SourceDir, err)
	}
	if !info.IsDir() {
		return apperrors.FilesystemError("stat", p.opts.SourceDir, fmt.Errorf("not a directory"))
	}

	if err := os.MkdirAll(p.opts.DestDir, 0o755); err != nil {
		return apperrors.FilesystemError("mkdir", p.opts.DestDir, err)
	}

	same, err := storage.SameDevice(p.opts.SourceDir, p.opts.DestDir)
	if err != nil {
		log.Warn(fmt.Sprintf("could not compare devices: %v", err))
	} else if !same {
		log.WithFields(map[string]interface{}{
			"source":      p.opts.SourceDir,
			"destination": p.opts.DestDir,
		}).Warn("source and destination are on different devices, moves will fail")
	}
	return nil
}

// reconcile deletes unwanted files and moves media into the library
func (p *Processor) reconcile(log *logger.FieldLogger, stats *Statistics) error {
	files, err := storage.ListFiles(p.opts.SourceDir)
	if err != nil {
		return err
	}
	stats.Discovered = len(files)

	for _, file := range files {
		decision := p.Decide(file)

		switch decision.Kind {
		case ActionDelete:
			if err := os.Remove(file.Path); err != nil {
				return apperrors.FilesystemError("delete", file.Path, err)
			}
			stats.Deleted++
			log.WithFields(map[string]interface{}{
				"from": file.Path,
				"kind": string(ActionDelete),
			}).Info("deleted file")

		case ActionSkip:
			stats.Processed++
			stats.Skipped++
			log.WithFields(map[string]interface{}{"from": file.Path}).Debug("skipped file")

		case ActionMove:
			stats.Processed++
			if err := p.move(log, file.Path, decision.Target, string(decision.Classification.Kind)); err != nil {
				return err
			}
			stats.Moved++
			if decision.Classification.IsSeries() {
				stats.Series++
			} else {
				stats.Movies++
			}
		}
	}
	return nil
}

// regroup gathers similar movies at the Movies root into per-title folders
func (p *Processor) regroup(log *logger.FieldLogger, stats *Statistics) error {
	moviesDir := p.MoviesFolder()
	movies, err := storage.ListRootFiles(moviesDir)
	if err != nil {
		return err
	}

	for _, group := range p.GroupMovies(movies) {
		if len(group) < 2 {
			continue
		}

		folder := filepath.Join(moviesDir, movies[group[0]].Stem)
		log.WithFields(map[string]interface{}{
			"folder":    folder,
			"members":   len(group),
			"threshold": p.matcher.Threshold(),
		}).Info("grouping similar movies")

		for _, idx := range group {
			movie := movies[idx]
			if err := p.move(log, movie.Path, filepath.Join(folder, movie.Name), "regroup"); err != nil {
				return err
			}
			stats.Regrouped++
		}
		stats.Clusters++
	}
	return nil
}

// prune removes empty directories below the source, deepest first
func (p *Processor) prune(log *logger.FieldLogger, stats *Statistics) error {
	dirs, err := storage.ListDirs(p.opts.SourceDir)
	if err != nil {
		return err
	}
	storage.SortDeepestFirst(dirs)

	for _, dir := range dirs {
		empty, err := storage.IsEmptyDir(dir)
		if err != nil {
			return err
		}
		if !empty {
			continue
		}
		if err := os.Remove(dir); err != nil {
			return apperrors.FilesystemError("rmdir", dir, err)
		}
		stats.PrunedDirs++
		log.WithFields(map[string]interface{}{
			"from": dir,
			"kind": "prune",
		}).Info("removed empty directory")
	}
	return nil
}

// move renames source to target, creating the target folder first.
// A target equal to the source is left untouched.
func (p *Processor) move(log *logger.FieldLogger, source, target, kind string) error {
	fields := map[string]interface{}{
		"from": source,
		"to":   target,
		"kind": kind,
	}

	if filepath.Clean(source) == filepath.Clean(target) {
		log.WithFields(fields).Debug("file already in place")
		return nil
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.FilesystemError("mkdir", dir, err)
	}

	if _, err := os.Lstat(target); err == nil {
		if p.opts.CollisionPolicy != CollisionOverwrite {
			return apperrors.TargetExistsError(source, target)
		}
		log.WithFields(fields).Warn("overwriting existing file")
	} else if !os.IsNotExist(err) {
		return apperrors.FilesystemError("stat", target, err)
	}

	if err := os.Rename(source, target); err != nil {
		return apperrors.FilesystemError("rename", source, err).WithContext("target", target)
	}

	log.WithFields(fields).Info("moved file")
	return nil
}
