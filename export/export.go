// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

// Package export writes mortality records to files for use by other tools.
package export

import (
	"context"
	"database/sql"
	"io"

	"github.com/derat/cancer/filewriter"
	"github.com/derat/cancer/rates"
	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// row is a flattened rates.Record with the column names used by the source files.
type row struct {
	Country string  `dataframe:"Country"`
	Year    int     `dataframe:"Year"`
	Cancer  string  `dataframe:"Cancer"`
	Age     string  `dataframe:"Age"`
	Sex     string  `dataframe:"Sex"`
	Deaths  float64 `dataframe:"Deaths"`
	Pop     float64 `dataframe:"Pop"`
	Rate    float64 `dataframe:"Rate"`
}

func flatten(recs []rates.Record) []row {
	rows := make([]row, len(recs))
	for i, r := range recs {
		rows[i] = row{
			Country: r.Country,
			Year:    r.Year,
			Cancer:  r.Cancer,
			Age:     r.Age.String(),
			Sex:     string(r.Sex),
			Deaths:  r.Deaths,
			Pop:     r.Pop,
			Rate:    r.Rate,
		}
	}
	return rows
}

// Frame returns recs as a dataframe with one column per Record field.
func Frame(recs []rates.Record) (dataframe.DataFrame, error) {
	if len(recs) == 0 {
		return dataframe.DataFrame{}, errors.New("no records")
	}
	df := dataframe.LoadStructs(flatten(recs))
	if df.Err != nil {
		return df, errors.Wrap(df.Err, "loading records")
	}
	return df, nil
}

// WriteCSV writes recs to w as a long-format CSV file with a header line.
func WriteCSV(w io.Writer, recs []rates.Record) error {
	df, err := Frame(recs)
	if err != nil {
		return err
	}
	return errors.Wrap(df.WriteCSV(w), "writing CSV")
}

const schema = `
CREATE TABLE IF NOT EXISTS mortality (
  country TEXT NOT NULL,
  year INTEGER NOT NULL,
  cancer TEXT NOT NULL,
  age TEXT NOT NULL,
  age_index INTEGER NOT NULL,
  sex TEXT NOT NULL,
  deaths REAL NOT NULL,
  pop REAL NOT NULL,
  rate REAL NOT NULL,
  PRIMARY KEY (country, year, cancer, age, sex)
)`

// WriteSQLite writes recs to a "mortality" table in the SQLite database at p,
// replacing any existing rows with the same keys.
func WriteSQLite(ctx context.Context, p string, recs []rates.Record) (err error) {
	if p == "" {
		return errors.New("database path is required")
	}
	db, err := sql.Open("sqlite", p)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() {
		if cerr := db.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "creating table")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO mortality
		(country, year, cancer, age, age_index, sex, deaths, pop, rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "preparing insert")
	}
	defer stmt.Close()
	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.Country, r.Year, r.Cancer, r.Age.String(), int(r.Age),
			string(r.Sex), r.Deaths, r.Pop, r.Rate); err != nil {
			return errors.Wrapf(err, "inserting %+v", r.Key)
		}
	}
	return errors.Wrap(tx.Commit(), "committing")
}

// WriteCSVFile atomically writes recs to a CSV file at p.
func WriteCSVFile(p string, recs []rates.Record) error {
	fw, err := filewriter.New(p)
	if err != nil {
		return err
	}
	if err := WriteCSV(fw, recs); err != nil {
		fw.Abort()
		return err
	}
	return fw.Close()
}
