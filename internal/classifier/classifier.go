package classifier

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	apperrors "github.com/glefebvre/mediasort/internal/errors"
)

// Kind represents the type of content
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// Folder names under the destination root
const (
	SeriesFolder = "Series"
	MoviesFolder = "Movies"
)

const (
	seriesGroup = "series"
	seasonGroup = "season"
)

// Classification represents the result of classifying a filename.
// SeriesName and Season are only set when Kind is KindSeries.
type Classification struct {
	Kind        Kind
	SeriesName  string
	Season      string
	CleanedName string
}

// IsSeries reports whether the file was recognised as an episode
func (c Classification) IsSeries() bool {
	return c.Kind == KindSeries
}

// Classifier decides series vs. movie from a filename and the configured patterns
type Classifier struct {
	cleaningPatterns []*regexp.Regexp
	seriesPattern    *regexp.Regexp
	seriesIdx        int
	seasonIdx        int
	destination      string
}

// New creates a new Classifier with precompiled, start-anchored patterns
func New(cleaning []string, series string, destination string) (*Classifier, error) {
	c := &Classifier{
		cleaningPatterns: make([]*regexp.Regexp, 0, len(cleaning)),
		destination:      destination,
	}

	for i, pattern := range cleaning {
		re, err := compileAnchored(pattern)
		if err != nil {
			key := fmt.Sprintf("patterns.elt_deleted_patterns[%d]", i)
			return nil, apperrors.InvalidConfigError(key, "is not a valid regular expression", err)
		}
		c.cleaningPatterns = append(c.cleaningPatterns, re)
	}

	re, err := compileAnchored(series)
	if err != nil {
		return nil, apperrors.InvalidConfigError("patterns.series_pattern", "is not a valid regular expression", err)
	}
	c.seriesPattern = re
	c.seriesIdx = re.SubexpIndex(seriesGroup)
	c.seasonIdx = re.SubexpIndex(seasonGroup)
	if c.seriesIdx < 0 {
		return nil, apperrors.InvalidConfigError("patterns.series_pattern", "must define a named group 'series'", nil)
	}

	return c, nil
}

// compileAnchored only lets a pattern match at the start of the string
func compileAnchored(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + pattern + `)`)
}

// CleanFilename removes the prefix matched by the first matching cleaning pattern
func (c *Classifier) CleanFilename(name string) string {
	for _, pattern := range c.cleaningPatterns {
		loc := pattern.FindStringIndex(name)
		if loc == nil {
			continue
		}
		return name[loc[1]:]
	}
	return name
}

// MatchesSeries reports whether the raw filename matches the series pattern
func (c *Classifier) MatchesSeries(name string) bool {
	return c.seriesPattern.MatchString(name)
}

// Classify cleans a raw filename and matches the series pattern against
// the cleaned name. Names without a season are movies.
func (c *Classifier) Classify(name string) Classification {
	classification := Classification{
		Kind:        KindMovie,
		CleanedName: c.CleanFilename(name),
	}
	// A pattern swallowing the whole name would leave nothing to move to
	if classification.CleanedName == "" {
		classification.CleanedName = name
	}

	cleaned := classification.CleanedName
	match := c.seriesPattern.FindStringSubmatchIndex(cleaned)
	if match == nil || c.seasonIdx < 0 {
		return classification
	}

	season, ok := group(cleaned, match, c.seasonIdx)
	if !ok || season == "" {
		return classification
	}
	series, _ := group(cleaned, match, c.seriesIdx)

	classification.Kind = KindSeries
	classification.SeriesName = strings.TrimSpace(series)
	classification.Season = season
	return classification
}

// group returns the text of capture group idx and whether it participated
func group(s string, match []int, idx int) (string, bool) {
	start, end := match[2*idx], match[2*idx+1]
	if start < 0 {
		return "", false
	}
	return s[start:end], true
}

// TargetFolder returns the destination folder for a classification
func (c *Classifier) TargetFolder(classification Classification) string {
	if classification.IsSeries() {
		return filepath.Join(c.destination, SeriesFolder, classification.SeriesName, "Season "+classification.Season)
	}
	return filepath.Join(c.destination, MoviesFolder)
}

// TargetPath returns the full destination path of the cleaned file
func (c *Classifier) TargetPath(classification Classification) string {
	return filepath.Join(c.TargetFolder(classification), classification.CleanedName)
}

// MoviesFolder returns the folder all movie files are moved to
func (c *Classifier) MoviesFolder() string {
	return filepath.Join(c.destination, MoviesFolder)
}
