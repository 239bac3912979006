package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"motiv8/internal/domain/service"
)

var levelPoints int64

// levelCmd prints where a point total sits on the level curve
var levelCmd = &cobra.Command{
	Use:     "level",
	Short:   "Show the level for a point total",
	Example: `  motiv8ctl level --points 2600`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if levelPoints < 0 {
			return fmt.Errorf("--points must be non-negative")
		}

		info := service.LevelFor(levelPoints)
		fmt.Fprintf(cmd.OutOrStdout(), "points=%d level=%d next=%d pointsToNext=%d\n",
			levelPoints, info.Level, info.NextLevel, info.PointsToNext)
		return nil
	},
}

func init() {
	levelCmd.Flags().Int64Var(&levelPoints, "points", 0, "cumulative points")
	_ = levelCmd.MarkFlagRequired("points")
	rootCmd.AddCommand(levelCmd)
}
