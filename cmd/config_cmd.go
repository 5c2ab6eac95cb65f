package main

import (
	"fmt"
	"os"

	"github.com/glefebvre/mediasort/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:           "config",
	Short:         "Print the effective configuration as TOML",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := config.Get().TOML()
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(os.Stdout, string(out))
		return err
	},
}
