package main

import (
	"fmt"
	"os"

	"github.com/glefebvre/mediasort/internal/classifier"
	"github.com/glefebvre/mediasort/internal/config"
	"github.com/glefebvre/mediasort/internal/dryrun"
	"github.com/glefebvre/mediasort/internal/logger"
	"github.com/glefebvre/mediasort/internal/processor"
	"github.com/glefebvre/mediasort/internal/report"
	"github.com/glefebvre/mediasort/internal/runlock"
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

var rootCmd = &cobra.Command{
	Use:   "mediasort",
	Short: "Sort downloaded media into a Series and Movies library",
	Long: `Mediasort walks a downloads folder, deletes unwanted side files, moves
episodes to Series/<name>/Season <nn> and films to Movies, groups similar
movie files into a shared folder and removes the directories left empty.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		return organize(config.Get(), dryRun)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Mediasort",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Mediasort " + version)
	},
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./config.yml)")
	rootCmd.Flags().Bool("dry-run", false, "print the planned actions without touching the filesystem")
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(versionCmd, classifyCmd, checkCmd, configCmd)
}

func initConfig() {
	// Skip config loading for version command
	if len(os.Args) > 1 && os.Args[1] == "version" {
		return
	}

	if err := config.Load(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Get()
	var file *logger.FileConfig
	if cfg.Logging.File != "" {
		file = &logger.FileConfig{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		}
	}
	logger.InitializeLoggers(cfg.Logging.Level, cfg.Logging.Format, file)
}

func newClassifier(cfg *config.Config) (*classifier.Classifier, error) {
	return classifier.New(cfg.Patterns.Cleaning, cfg.Patterns.Series, cfg.Paths.DestFolder)
}

func newProcessor(cfg *config.Config) (*processor.Processor, error) {
	c, err := newClassifier(cfg)
	if err != nil {
		return nil, err
	}
	return processor.NewProcessor(processor.Options{
		SourceDir:        cfg.Paths.DownloadsFolder,
		DestDir:          cfg.Paths.DestFolder,
		VideoExtensions:  cfg.Extensions.Video,
		DeleteExtensions: cfg.Extensions.Delete,
		Threshold:        cfg.Threshold(),
		CollisionPolicy:  cfg.Organize.CollisionPolicy,
	}, c, logger.AppLogger())
}

func organize(cfg *config.Config, dryRun bool) error {
	p, err := newProcessor(cfg)
	if err != nil {
		return err
	}
	renderer := report.NewRenderer(os.Stdout)

	if dryRun {
		plan, err := dryrun.NewAnalyzer(p).Analyze()
		if err != nil {
			return err
		}
		renderer.Plan(plan)
		return nil
	}

	lock, err := runlock.Acquire(cfg.Organize.LockFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.AppLogger().Error("failed to release run lock", err)
		}
	}()

	stats, err := p.Run()
	renderer.Statistics(stats)
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
