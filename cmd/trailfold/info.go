package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kezhuw/traildb"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <db>",
		Short: "Print database counts, fields and time range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(args[0])
			if err != nil {
				return err
			}
			defer db.Close()
			return writeInfo(cmd.OutOrStdout(), db)
		},
	}
}

func writeInfo(out io.Writer, db *traildb.DB) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "trails\t%d\n", db.NumTrails())
	fmt.Fprintf(w, "events\t%d\n", db.NumEvents())
	if db.NumEvents() != 0 {
		fmt.Fprintf(w, "time\t%d .. %d\n", db.MinTimestamp(), db.MaxTimestamp())
	}
	fmt.Fprintf(w, "fields\t%d\n", db.NumFields())
	for i, name := range db.Fields() {
		if i == 0 {
			continue
		}
		size, err := db.LexiconSize(traildb.Field(i))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s\t%d values\n", name, size)
	}
	return w.Flush()
}
