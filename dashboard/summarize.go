// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/derat/cancer/rates"
	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newSummarizeCommand(a *app) *cobra.Command {
	var sf selectionFlags
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Print the selected rates as a table along with summary statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.load(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "loading data")
			}
			res, err := sf.apply(cmd, t)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s, %s, %d\n", res.Params.Cancer, res.Params.Sex.Label(), res.Params.Year)
			if err := writePivot(w, res.Rows); err != nil {
				return err
			}
			return writeSummary(w, res.Rows)
		},
	}
	sf.register(cmd)
	return cmd
}

// pivot returns one row per country with its rate in each age bracket.
// Brackets without rates are "-".
func pivot(rows []rates.Record) ([][]string, error) {
	long := make([]rates.LongRow, len(rows))
	for i, r := range rows {
		long[i] = rates.LongRow{
			ID:    rates.ID{Country: r.Country, Year: r.Year, Cancer: r.Cancer, Sex: r.Sex},
			Age:   r.Age,
			Value: rates.Known(r.Rate),
		}
	}
	wide, err := rates.Widen(long)
	if err != nil {
		return nil, err
	}
	var table [][]string
	for _, wr := range wide {
		line := []string{wr.Country}
		for _, v := range wr.Values {
			if v.Valid {
				line = append(line, fmt.Sprintf("%.2f", v.Num))
			} else {
				line = append(line, "-")
			}
		}
		table = append(table, line)
	}
	return table, nil
}

func writePivot(w io.Writer, rows []rates.Record) error {
	data, err := pivot(rows)
	if err != nil {
		return err
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(append([]string{"Country"}, rates.AgeNames()...))
	tw.SetAlignment(tablewriter.ALIGN_RIGHT)
	tw.AppendBulk(data)
	tw.Render()
	return nil
}

// summary holds statistics about a set of rates.
type summary struct {
	n                     int
	min, median, p90, max float64
	mean                  float64
}

func summarize(rows []rates.Record) (summary, error) {
	data := make(stats.Float64Data, len(rows))
	for i, r := range rows {
		data[i] = r.Rate
	}
	s := summary{n: len(data)}
	var err error
	if s.min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.median, err = stats.Median(data); err != nil {
		return s, err
	}
	if s.p90, err = stats.PercentileNearestRank(data, 90); err != nil {
		return s, err
	}
	if s.max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	return s, nil
}

func writeSummary(w io.Writer, rows []rates.Record) error {
	s, err := summarize(rows)
	if errors.Is(err, stats.EmptyInputErr) {
		_, err = fmt.Fprintln(w, "No rates to summarize")
		return err
	} else if err != nil {
		return err
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Rates", "Min", "Median", "90th", "Max", "Mean"})
	tw.Append([]string{
		fmt.Sprint(s.n),
		fmt.Sprintf("%.2f", s.min),
		fmt.Sprintf("%.2f", s.median),
		fmt.Sprintf("%.2f", s.p90),
		fmt.Sprintf("%.2f", s.max),
		fmt.Sprintf("%.2f", s.mean),
	})
	tw.Render()
	return nil
}
