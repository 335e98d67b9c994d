package main

import (
	"context"
	"database/sql"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/kezhuw/traildb"
)

type makeFlags struct {
	fields     []string
	jsonl      string
	sqlite     string
	postgres   string
	table      string
	uuidColumn string
	timeColumn string
}

func newMakeCmd(a *app) *cobra.Command {
	var flags makeFlags
	cmd := &cobra.Command{
		Use:   "make <out>",
		Short: "Build a trail database from JSONL, SQLite or PostgreSQL events",
		Long: `Make reads events from a JSONL file, an SQLite table or a PostgreSQL table
and writes them to a new trail database.

Each JSONL line is an object of the form
  {"uuid": "<uuid>", "timestamp": 123, "values": {"field": "value"}}

Table rows are read from --table; the uuid and timestamp columns are named
by --uuid-column and --time-column. Without --fields, every other column of
the table becomes a field.

Example:
  trailfold make out.tdb --fields action,page --jsonl events.jsonl
  trailfold make out.tdb --sqlite events.db --table events
  trailfold make out.tdb --postgres 'postgres://localhost/app?sslmode=disable'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMake(cmd.Context(), args[0], &flags)
		},
	}
	cmd.Flags().StringSliceVar(&flags.fields, "fields", nil, "comma separated field names")
	cmd.Flags().StringVar(&flags.jsonl, "jsonl", "", "JSONL event file, - for stdin")
	cmd.Flags().StringVar(&flags.sqlite, "sqlite", "", "SQLite database file")
	cmd.Flags().StringVar(&flags.postgres, "postgres", "", "PostgreSQL connection string")
	cmd.Flags().StringVar(&flags.table, "table", "events", "table holding events")
	cmd.Flags().StringVar(&flags.uuidColumn, "uuid-column", "uuid", "column holding trail uuids")
	cmd.Flags().StringVar(&flags.timeColumn, "time-column", "timestamp", "column holding event timestamps")
	cmd.MarkFlagsMutuallyExclusive("jsonl", "sqlite", "postgres")
	cmd.MarkFlagsOneRequired("jsonl", "sqlite", "postgres")
	return cmd
}

func (a *app) runMake(ctx context.Context, out string, flags *makeFlags) (err error) {
	opts, err := a.options()
	if err != nil {
		return err
	}

	var sqldb *sql.DB
	fields := flags.fields
	if driver, dsn := flags.sqlSource(); driver != "" {
		if sqldb, err = openSQL(driver, dsn); err != nil {
			return err
		}
		defer sqldb.Close()
		if len(fields) == 0 {
			fields, err = sqlFields(ctx, sqldb, flags.table, flags.uuidColumn, flags.timeColumn)
			if err != nil {
				return err
			}
		}
	} else if len(fields) == 0 {
		return errors.New("make: --fields is required with --jsonl")
	}

	cons, err := traildb.NewConstructor(out, fields, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			cons.Close()
		}
	}()

	var n int
	if sqldb != nil {
		n, err = importSQL(ctx, sqldb, flags.table, flags.uuidColumn, flags.timeColumn, fields, cons)
	} else {
		n, err = a.importJSONLFile(flags.jsonl, cons)
	}
	if err != nil {
		return err
	}
	if err = cons.Finalize(); err != nil {
		return err
	}
	a.logger.Infof("make: %d events written to %s", n, out)
	return nil
}

// sqlSource returns the database/sql driver and data source of a table
// event source, or an empty driver for JSONL.
func (flags *makeFlags) sqlSource() (driver, dsn string) {
	switch {
	case flags.sqlite != "":
		return "sqlite", flags.sqlite
	case flags.postgres != "":
		return "postgres", flags.postgres
	}
	return "", ""
}

func (a *app) importJSONLFile(name string, cons *traildb.Constructor) (int, error) {
	if name == "-" {
		return importJSONL(os.Stdin, cons)
	}
	f, err := os.Open(name)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return importJSONL(f, cons)
}
