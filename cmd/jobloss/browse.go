package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobloss/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the sectors in a terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		b, err := tui.New(ds.Binder)
		if err != nil {
			return err
		}

		// log lines would tear the screen
		restore := zap.ReplaceGlobals(zap.NewNop())
		defer restore()
		return b.Run()
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
