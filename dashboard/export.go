// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package main

import (
	"github.com/derat/cancer/export"
	"github.com/derat/cancer/rates"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		sf     selectionFlags
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the mortality table to a CSV file or SQLite database",
		Long: "Write the mortality table to a CSV file or SQLite database.\n\n" +
			"All records are written unless selection flags are supplied.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "sqlite" {
				return errors.Errorf("bad format %q", format)
			}
			if format == "sqlite" && out == "" {
				return errors.New("--out is required for sqlite")
			}
			t, err := a.load(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "loading data")
			}
			recs := t.Records()
			if sf.changed(cmd) {
				res, err := sf.apply(cmd, t)
				if err != nil {
					return err
				}
				recs = res.Rows
			}
			a.log.Info("Exporting records",
				zap.Int("records", len(recs)), zap.String("format", format), zap.String("out", out))
			return writeRecords(cmd, format, out, recs)
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVar(&format, "format", "csv", `Output format ("csv" or "sqlite")`)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (CSV is written to stdout if empty)")
	return cmd
}

func writeRecords(cmd *cobra.Command, format, out string, recs []rates.Record) error {
	switch {
	case format == "sqlite":
		return export.WriteSQLite(cmd.Context(), out, recs)
	case out == "":
		return export.WriteCSV(cmd.OutOrStdout(), recs)
	default:
		return export.WriteCSVFile(out, recs)
	}
}
