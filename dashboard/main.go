// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

// Package main implements a command-line tool for viewing age-specific cancer
// mortality rates derived from WHO death and population counts.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/derat/cancer/rates"
	"github.com/derat/cancer/selection"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad config: %v\n", err)
		os.Exit(2)
	}
	if err := newRootCommand(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds state shared by subcommands.
type app struct {
	cfg     *config
	verbose bool
	log     *zap.Logger
}

func newRootCommand(cfg *config) *cobra.Command {
	a := &app{cfg: cfg, log: zap.NewNop()}
	root := &cobra.Command{
		Use:          "dashboard",
		Short:        "Explore age-specific cancer mortality rates",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zc := zap.NewProductionConfig()
			if a.verbose {
				zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
			}
			log, err := zc.Build()
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.log.Sync()
		},
	}
	fs := root.PersistentFlags()
	fs.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug messages")
	fs.StringVar(&cfg.DeathsURL, "deaths", cfg.DeathsURL, "URL or path of CSV file with death counts")
	fs.StringVar(&cfg.PopulationURL, "population", cfg.PopulationURL, "URL or path of CSV file with population counts")
	fs.DurationVar(&cfg.FetchTimeout, "fetch-timeout", cfg.FetchTimeout, "Timeout for fetching each source file")

	root.AddCommand(
		newServeCommand(a),
		newPlotCommand(a),
		newExportCommand(a),
		newSummarizeCommand(a),
	)
	return root
}

// load fetches the sources and builds the mortality table.
func (a *app) load(ctx context.Context) (*rates.Table, error) {
	return a.cfg.loader(a.log).Load(ctx)
}

// selectionFlags holds flags describing a subset of the table.
type selectionFlags struct {
	year      int
	sex       string
	countries []string
	cancer    string
}

func (sf *selectionFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&sf.year, "year", 0, "Year to show (defaults to earliest year)")
	fs.StringVar(&sf.sex, "sex", string(rates.Male), `Sex to show ("M" or "F")`)
	fs.StringSliceVar(&sf.countries, "country", nil, "Countries to show (defaults to a small set)")
	fs.StringVar(&sf.cancer, "cancer", selection.DefaultCancer, "Cancer type to show")
}

// changed returns true if any selection flags were explicitly passed to cmd.
func (sf *selectionFlags) changed(cmd *cobra.Command) bool {
	for _, n := range []string{"year", "sex", "country", "cancer"} {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

// params returns selection parameters for t, using defaults for unset flags.
func (sf *selectionFlags) params(cmd *cobra.Command, t *rates.Table) selection.Params {
	p := selection.Defaults(t)
	fs := cmd.Flags()
	if fs.Changed("year") {
		p.Year = sf.year
	}
	if fs.Changed("sex") {
		p.Sex = rates.Sex(sf.sex)
	}
	if fs.Changed("country") {
		p.Countries = sf.countries
	}
	if fs.Changed("cancer") {
		p.Cancer = sf.cancer
	}
	return p
}

// apply applies the selection described by sf to t and logs any coverage message.
func (sf *selectionFlags) apply(cmd *cobra.Command, t *rates.Table) (*selection.Result, error) {
	res, err := selection.Apply(t, sf.params(cmd, t))
	if err != nil {
		return nil, err
	}
	if res.Message != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), res.Message)
	}
	return res, nil
}
