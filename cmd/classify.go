package main

import (
	"os"
	"path/filepath"

	"github.com/glefebvre/mediasort/internal/config"
	"github.com/glefebvre/mediasort/internal/report"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify NAME...",
	Short: "Show how file names would be classified",
	Long: `Classify each NAME with the configured cleaning and series patterns and
print the resulting kind, series, season and library target. Nothing is moved.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := classifyNames(config.Get(), args)
		if err != nil {
			return err
		}
		report.NewRenderer(os.Stdout).Classifications(rows)
		return nil
	},
}

func classifyNames(cfg *config.Config, names []string) ([]report.ClassificationRow, error) {
	c, err := newClassifier(cfg)
	if err != nil {
		return nil, err
	}

	rows := make([]report.ClassificationRow, 0, len(names))
	for _, name := range names {
		classification := c.Classify(filepath.Base(name))
		rows = append(rows, report.ClassificationRow{
			Name:           name,
			Classification: classification,
			Target:         c.TargetPath(classification),
		})
	}
	return rows, nil
}
