// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package charts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/derat/cancer/filewriter"
	"github.com/derat/cancer/gnuplot"
	"github.com/derat/cancer/rates"
)

// Render uses gnuplot to write the heatmap and bar chart for rows to PNG files named
// "<prefix>-heatmap.png" and "<prefix>-bars.png". The bar chart only includes ages
// selected by b. The paths of the written files are returned.
func Render(ctx context.Context, rows []rates.Record, title string, b Brush, prefix string) ([]string, error) {
	if len(rows) == 0 {
		return nil, errors.New("no rows to plot")
	}
	dir, err := os.MkdirTemp("", "charts.")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	countries := rates.Countries(rows)
	heatData := filepath.Join(dir, "heatmap.data")
	barsData := filepath.Join(dir, "bars.data")
	if err := writeFile(heatData, func(w io.Writer) error { return writeHeatmapData(w, rows, countries) }); err != nil {
		return nil, err
	}
	if err := writeFile(barsData, func(w io.Writer) error { return writeBarData(w, b.Filter(rows), countries, b) }); err != nil {
		return nil, err
	}

	type plotData struct {
		Title, DataPath, Output string
		Width, Height           int
		Ages, Countries         []string
		MinRate, MaxRate        float64
	}
	heatOut := prefix + "-heatmap.png"
	barsOut := prefix + "-bars.png"
	if err := gnuplot.ExecTemplate(ctx, heatmapTmpl, plotData{
		Title:     title,
		DataPath:  heatData,
		Output:    heatOut,
		Width:     1000,
		Height:    120 + 30*len(countries),
		Ages:      rates.AgeNames(),
		Countries: countries,
		MinRate:   minColorRate,
		MaxRate:   maxColorRate,
	}); err != nil {
		return nil, fmt.Errorf("heatmap: %v", err)
	}
	if err := gnuplot.ExecTemplate(ctx, barsTmpl, plotData{
		Title:     title,
		DataPath:  barsData,
		Output:    barsOut,
		Width:     1000,
		Height:    500,
		Countries: countries,
	}); err != nil {
		return nil, fmt.Errorf("bar chart: %v", err)
	}
	return []string{heatOut, barsOut}, nil
}

// writeFile atomically writes p using fn.
func writeFile(p string, fn func(w io.Writer) error) error {
	fw, err := filewriter.New(p)
	if err != nil {
		return err
	}
	if err := fn(fw); err != nil {
		fw.Abort()
		return err
	}
	return fw.Close()
}

// writeHeatmapData writes one line per row with the age index, the country's index
// in countries, and the rate clamped to the color scale's domain.
func writeHeatmapData(w io.Writer, rows []rates.Record, countries []string) error {
	index := make(map[string]int, len(countries))
	for i, c := range countries {
		index[c] = i
	}
	for _, r := range rows {
		ci, ok := index[r.Country]
		if !ok {
			continue
		}
		rate := r.Rate
		if rate < minColorRate {
			rate = minColorRate
		} else if rate > maxColorRate {
			rate = maxColorRate
		}
		if _, err := fmt.Fprintf(w, "%d\t%d\t%s\n", int(r.Age), ci, formatRate(rate)); err != nil {
			return err
		}
	}
	return nil
}

// writeBarData writes a header line naming countries, followed by one line per selected
// age with each country's rate. Missing rates are written as "?".
func writeBarData(w io.Writer, rows []rates.Record, countries []string, b Brush) error {
	type cell struct {
		country string
		age     rates.Age
	}
	vals := make(map[cell]float64)
	for _, r := range rows {
		vals[cell{r.Country, r.Age}] += r.Rate
	}

	quoted := make([]string, len(countries))
	for i, c := range countries {
		quoted[i] = strconv.Quote(c)
	}
	if _, err := io.WriteString(w, "\"Age\"\t"+strings.Join(quoted, "\t")+"\n"); err != nil {
		return err
	}
	for _, a := range b.Ages() {
		line := []string{strconv.Quote(a.String())}
		for _, c := range countries {
			if v, ok := vals[cell{c, a}]; ok {
				line = append(line, formatRate(v))
			} else {
				line = append(line, "?")
			}
		}
		if _, err := io.WriteString(w, strings.Join(line, "\t")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func formatRate(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }
