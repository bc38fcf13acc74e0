package main

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"jobloss/internal/catalog"
)

var projectSector string

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Print the map payload of one sector as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		state, err := ds.Binder.InitialPayload()
		if err != nil {
			return err
		}
		if projectSector != string(state.Selected) {
			if state, err = ds.Binder.OnSelectionChanged(state, projectSector); err != nil {
				return err
			}
		}

		out, err := json.MarshalIndent(state.Payload, "", "  ")
		if err != nil {
			return eris.Wrap(err, "project: encode payload")
		}
		_, err = cmd.OutOrStdout().Write(append(out, '\n'))
		return err
	},
}

func init() {
	projectCmd.Flags().StringVar(&projectSector, "sector", string(catalog.Default), "sector code (X01..X20 or worker_job_loss_rate)")
	rootCmd.AddCommand(projectCmd)
}
