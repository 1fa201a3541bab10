// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

// Package gnuplot makes it slightly easier to generate plots using gnuplot.
package gnuplot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"text/template"
)

// funcs are available to templates passed to ExecTemplate.
var funcs = template.FuncMap{
	"quote": Quote,
	"tics":  Tics,
}

// Quote returns s as a single-quoted gnuplot string.
func Quote(s string) string { return "'" + strings.ReplaceAll(s, "'", "''") + "'" }

// Tics returns a gnuplot tic list labeling positions 0, 1, ... with labels,
// e.g. "('Age <5' 0, 'Age 5-14' 1)".
func Tics(labels []string) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%s %d", Quote(l), i)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ExecTemplate executes the supplied Go template and data to write a .gnuplot file,
// which it then passes to gnuplot.
func ExecTemplate(ctx context.Context, tmpl string, data interface{}) error {
	p, err := writeScript(tmpl, data)
	if err != nil {
		return err
	}
	defer os.Remove(p)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "gnuplot", p)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%v: %q", err, msg)
		}
		return err
	}
	return nil
}

// writeScript executes tmpl with data into a new temp file and returns its path.
func writeScript(tmpl string, data interface{}) (string, error) {
	t, err := template.New("").Funcs(funcs).Parse(tmpl)
	if err != nil {
		return "", err
	}
	gf, err := os.CreateTemp("", "gnuplot.")
	if err != nil {
		return "", err
	}
	terr := t.Execute(gf, data)
	cerr := gf.Close()
	if terr == nil {
		terr = cerr
	}
	if terr != nil {
		os.Remove(gf.Name())
		return "", terr
	}
	return gf.Name(), nil
}
