package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/glefebvre/mediasort/internal/config"
	"github.com/glefebvre/mediasort/internal/report"
	"github.com/glefebvre/mediasort/internal/storage"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the configured folders before a run",
	Long: `Check resolves the downloads and library folders, verifies they can be
read and written, reports free disk space and whether both folders share a
device. Moves across devices are not atomic.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		results := runChecks(config.Get())
		report.NewRenderer(os.Stdout).Checks("Environment", results)
		for _, result := range results {
			if !result.Passed {
				return fmt.Errorf("%s check failed: %s", result.Name, result.Detail)
			}
		}
		return nil
	},
}

func runChecks(cfg *config.Config) []report.CheckResult {
	src, dest := cfg.Paths.DownloadsFolder, cfg.Paths.DestFolder
	results := make([]report.CheckResult, 0, 5)

	if err := storage.CheckDirectoryAccess(src); err != nil {
		results = append(results, report.CheckResult{Name: "Downloads", Detail: err.Error()})
	} else {
		results = append(results, report.CheckResult{Name: "Downloads", Passed: true, Detail: src})
	}

	destExists := true
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		destExists = false
		results = append(results, report.CheckResult{
			Name:   "Library",
			Passed: true,
			Warn:   true,
			Detail: dest + " does not exist and will be created",
		})
	} else if err := storage.CheckDirectoryAccess(dest); err != nil {
		results = append(results, report.CheckResult{Name: "Library", Detail: err.Error()})
	} else {
		results = append(results, report.CheckResult{Name: "Library", Passed: true, Detail: dest})
	}

	space, err := storage.GetDiskSpace(dest)
	if err != nil {
		results = append(results, report.CheckResult{Name: "Disk space", Detail: err.Error()})
	} else {
		results = append(results, report.CheckResult{Name: "Disk space", Passed: true, Detail: space.String()})
	}

	if destExists {
		results = append(results, sameDeviceCheck(src, dest))
	}

	if size, err := storage.DirSize(src); err == nil {
		enough, _, err := storage.HasEnoughSpace(dest, size)
		switch {
		case err != nil:
			results = append(results, report.CheckResult{Name: "Capacity", Detail: err.Error()})
		case enough:
			results = append(results, report.CheckResult{Name: "Capacity", Passed: true,
				Detail: fmt.Sprintf("downloads fit in the library (%s)", humanize.IBytes(size))})
		default:
			results = append(results, report.CheckResult{Name: "Capacity", Passed: true, Warn: true,
				Detail: fmt.Sprintf("downloads (%s) exceed the free space of the library", humanize.IBytes(size))})
		}
	}

	return results
}

func sameDeviceCheck(src, dest string) report.CheckResult {
	same, err := storage.SameDevice(src, dest)
	switch {
	case err != nil:
		return report.CheckResult{Name: "Devices", Detail: err.Error()}
	case same:
		return report.CheckResult{Name: "Devices", Passed: true, Detail: "downloads and library share a device"}
	default:
		return report.CheckResult{Name: "Devices", Passed: true, Warn: true,
			Detail: "downloads and library are on different devices, moves will fail"}
	}
}
