// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package main

import (
	"fmt"

	"github.com/derat/cancer/charts"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPlotCommand(a *app) *cobra.Command {
	var (
		sf     selectionFlags
		brush  string
		prefix string
	)
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render the heatmap and bar chart to PNG files using gnuplot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate the brush before spending time on fetching.
			b, err := charts.ParseBrush(brush)
			if err != nil {
				return err
			}
			t, err := a.load(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "loading data")
			}
			res, err := sf.apply(cmd, t)
			if err != nil {
				return err
			}
			if len(res.Rows) == 0 {
				return errors.Errorf("nothing to plot for %v", res.Params)
			}
			title := charts.Title(res.Params.Cancer, res.Params.Sex, res.Params.Year)
			a.log.Debug("Rendering charts", zap.String("title", title), zap.Stringer("brush", b))
			paths, err := charts.Render(cmd.Context(), res.Rows, title, b, prefix)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVar(&brush, "brush", "", `Age range for bar chart, e.g. "Age 15-24:Age 45-54"`)
	cmd.Flags().StringVar(&prefix, "prefix", "mortality", "Prefix for output files")
	return cmd
}
