package main

import (
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Concatenate yearly snapshots into data.csv",
	RunE: func(cmd *cobra.Command, _ []string) error {
		years, err := yearRange(cmd)
		if err != nil {
			return err
		}
		s := dataStore()
		n, err := s.BuildDatabase(years)
		if err != nil {
			return err
		}
		cmd.Printf("wrote %d accidents to %s\n", n, s.DatabasePath())
		return nil
	},
}

func init() {
	addYearFlags(buildCmd)
	rootCmd.AddCommand(buildCmd)
}
