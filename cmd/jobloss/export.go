package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobloss/internal/engine"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the aggregated table as an Arrow IPC stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return eris.Wrap(err, "export: create output")
			}
			defer f.Close()
			w = f
		}

		if err := engine.WriteArrow(w, ds.Binder.Rows()); err != nil {
			return err
		}
		zap.L().Info("table exported", zap.String("out", exportOut), zap.Int("rows", len(ds.Binder.Rows())))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "-", "output file, - for stdout")
	rootCmd.AddCommand(exportCmd)
}
