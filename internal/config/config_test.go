package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/glefebvre/mediasort/internal/errors"
	"github.com/glefebvre/mediasort/internal/processor"
)

const seriesPattern = `(?P<series>.+?)[. ]S(?P<season>\d{2})E\d{2}`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	dest := t.TempDir()
	src := t.TempDir()
	path := writeConfig(t, "config.yaml", `
paths:
  dest_folder: `+dest+`
  path_dl_files: `+src+`
extensions:
  list_extension: [".MKV", "mp4", "mkv"]
  file_dl: ["nfo", "txt"]
patterns:
  elt_deleted_patterns:
    - '\[[^\]]*\]\s*'
    - 'www\.[a-z]+\.[a-z]+\s*-\s*'
  series_pattern: '`+seriesPattern+`'
  similarity_threshold: 0.8
`)

	cfg = nil
	if err := Load(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	config := Get()
	if config.Paths.DestFolder != dest {
		t.Errorf("expected dest %s, got %s", dest, config.Paths.DestFolder)
	}
	if strings.Join(config.Extensions.Video, ",") != "mkv,mp4" {
		t.Errorf("expected normalized video extensions, got %v", config.Extensions.Video)
	}
	if len(config.Patterns.Cleaning) != 2 {
		t.Errorf("expected 2 cleaning patterns, got %d", len(config.Patterns.Cleaning))
	}
	if config.Threshold() != 0.8 {
		t.Errorf("expected threshold 0.8, got %f", config.Threshold())
	}
	if config.Organize.CollisionPolicy != processor.CollisionFail {
		t.Errorf("expected default collision policy fail, got %s", config.Organize.CollisionPolicy)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got %s", config.Logging.Level)
	}
	if config.MoviesFolder() != filepath.Join(dest, "Movies") {
		t.Errorf("unexpected movies folder %s", config.MoviesFolder())
	}
}

func TestLoad_INICommaLists(t *testing.T) {
	path := writeConfig(t, "config.ini", `
[paths]
dest_folder = /library
path_dl_files = /downloads

[extensions]
list_extension = mkv, avi,mp4
file_dl = nfo,txt

[patterns]
elt_deleted_patterns = www\.site\.org\s*,RELEASE-
series_pattern = (?P<series>.+)S(?P<season>\d+)
similarity_threshold = 0.75
`)

	cfg = nil
	if err := Load(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	config := Get()
	if strings.Join(config.Extensions.Video, ",") != "mkv,avi,mp4" {
		t.Errorf("expected comma list to be split, got %v", config.Extensions.Video)
	}
	if strings.Join(config.Patterns.Cleaning, "|") != `www\.site\.org\s*|RELEASE-` {
		t.Errorf("expected two cleaning patterns, got %v", config.Patterns.Cleaning)
	}
	if config.Threshold() != 0.75 {
		t.Errorf("expected threshold 0.75, got %f", config.Threshold())
	}
	if config.Paths.DownloadsFolder != "/downloads" {
		t.Errorf("expected downloads folder /downloads, got %s", config.Paths.DownloadsFolder)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("MEDIASORT_PATHS_DEST_FOLDER", "/env/library")
	t.Setenv("MEDIASORT_PATHS_PATH_DL_FILES", "/env/downloads")
	t.Setenv("MEDIASORT_PATTERNS_SERIES_PATTERN", seriesPattern)
	t.Setenv("MEDIASORT_PATTERNS_SIMILARITY_THRESHOLD", "0.6")
	t.Setenv("MEDIASORT_EXTENSIONS_FILE_DL", "nfo,jpg")
	t.Setenv("LOG_LEVEL", "debug")

	cfg = nil
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an explicit missing config file to fail")
	}

	dir := t.TempDir()
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	if err := Load(""); err != nil {
		t.Fatalf("expected environment-only config to load, got %v", err)
	}

	config := Get()
	if config.Paths.DestFolder != "/env/library" {
		t.Errorf("expected env dest folder, got %s", config.Paths.DestFolder)
	}
	if config.Threshold() != 0.6 {
		t.Errorf("expected env threshold 0.6, got %f", config.Threshold())
	}
	if strings.Join(config.Extensions.Delete, ",") != "nfo,jpg" {
		t.Errorf("expected env delete list, got %v", config.Extensions.Delete)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected LOG_LEVEL alternative to apply, got %s", config.Logging.Level)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
	}{
		{
			name: "missing destination",
			content: `
paths: {path_dl_files: /src}
patterns: {series_pattern: '(?P<series>.+)', similarity_threshold: 0.5}
`,
			key: "paths.dest_folder",
		},
		{
			name: "missing source",
			content: `
paths: {dest_folder: /dst}
patterns: {series_pattern: '(?P<series>.+)', similarity_threshold: 0.5}
`,
			key: "paths.path_dl_files",
		},
		{
			name: "missing series pattern",
			content: `
paths: {dest_folder: /dst, path_dl_files: /src}
patterns: {similarity_threshold: 0.5}
`,
			key: "patterns.series_pattern",
		},
		{
			name: "missing threshold",
			content: `
paths: {dest_folder: /dst, path_dl_files: /src}
patterns: {series_pattern: '(?P<series>.+)'}
`,
			key: "patterns.similarity_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg = nil
			err := Load(writeConfig(t, "config.yaml", tt.content))
			if err == nil {
				t.Fatal("expected missing config error, got nil")
			}
			if apperrors.GetErrorCode(err) != apperrors.CodeMissingConfig {
				t.Errorf("expected MISSING_CONFIG, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("expected error to name %s, got %v", tt.key, err)
			}
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	base := "paths: {dest_folder: /dst, path_dl_files: /src}\n"
	tests := []struct {
		name    string
		content string
		message string
	}{
		{
			name:    "threshold above one",
			content: base + "patterns: {series_pattern: '(?P<series>.+)', similarity_threshold: 1.5}\n",
			message: "must be between 0 and 1",
		},
		{
			name:    "series pattern without series group",
			content: base + "patterns: {series_pattern: '(.+)S(?P<season>\\d+)', similarity_threshold: 0.5}\n",
			message: "named group 'series'",
		},
		{
			name:    "broken series regex",
			content: base + "patterns: {series_pattern: '(?P<series>.+', similarity_threshold: 0.5}\n",
			message: "not a valid regular expression",
		},
		{
			name:    "broken cleaning regex",
			content: base + "patterns: {series_pattern: '(?P<series>.+)', similarity_threshold: 0.5, elt_deleted_patterns: ['[']}\n",
			message: "elt_deleted_patterns[0]",
		},
		{
			name:    "unknown collision policy",
			content: base + "patterns: {series_pattern: '(?P<series>.+)', similarity_threshold: 0.5}\norganize: {collision_policy: rename}\n",
			message: "collision_policy",
		},
		{
			name:    "invalid log level",
			content: base + "patterns: {series_pattern: '(?P<series>.+)', similarity_threshold: 0.5}\nlogging: {level: verbose}\n",
			message: "logging.level must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg = nil
			err := Load(writeConfig(t, "config.yaml", tt.content))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if apperrors.GetErrorCode(err) != apperrors.CodeInvalidConfig {
				t.Errorf("expected INVALID_CONFIG, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("expected error containing %q, got %v", tt.message, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandPath("~/media")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Join(home, "media") {
		t.Errorf("expected %s, got %s", filepath.Join(home, "media"), got)
	}

	got, _ = ExpandPath("")
	if got != "" {
		t.Errorf("expected empty path to stay empty, got %q", got)
	}

	got, _ = ExpandPath("relative/dir")
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %s", got)
	}
}

func TestNormalizeExtensions(t *testing.T) {
	got := NormalizeExtensions([]string{" .MKV", "mkv", "", "Mp4 ", "."})
	if strings.Join(got, ",") != "mkv,mp4" {
		t.Errorf("expected mkv,mp4, got %v", got)
	}
}

func TestTOML(t *testing.T) {
	threshold := 0.8
	c := &Config{
		Paths:    PathsConfig{DestFolder: "/dst", DownloadsFolder: "/src"},
		Patterns: PatternsConfig{Series: "(?P<series>.+)", SimilarityThreshold: &threshold},
	}

	data, err := c.TOML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(data)
	for _, want := range []string{"[paths]", "dest_folder", "/dst", "similarity_threshold = 0.8"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected TOML to contain %q, got:\n%s", want, out)
		}
	}
}
