package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kezhuw/traildb"
)

type counts struct {
	Trails  uint64
	Events  uint64
	Skipped uint64

	last uint64
	seen bool
}

func countEvents(db traildb.Database, trailID uint64, ev *traildb.Event, c counts) counts {
	if !c.seen || c.last != trailID {
		c.Trails++
		c.last, c.seen = trailID, true
	}
	c.Events++
	return c
}

func newCountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count <db>",
		Short: "Count matching trails and events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(args[0])
			if err != nil {
				return err
			}
			defer db.Close()
			f, err := a.filter(db, cmd)
			if err != nil {
				return err
			}
			c, err := a.count(db, f)
			if err != nil {
				return err
			}
			return writeCounts(cmd.OutOrStdout(), c)
		},
	}
	cmd.Flags().String("filter", "", "event filter query")
	return cmd
}

func (a *app) count(db traildb.Database, f *traildb.EventFilter) (counts, error) {
	var skipped uint64
	opts := &traildb.IteratorOptions{
		Logger: a.logger,
		OnSkip: func(uint64, error) { skipped++ },
	}
	c, err := traildb.FoldWithOptions(db, f, opts, countEvents, counts{})
	c.Skipped = skipped
	return c, err
}

func writeCounts(w io.Writer, c counts) error {
	_, err := fmt.Fprintf(w, "trails %d\nevents %d\nskipped %d\n", c.Trails, c.Events, c.Skipped)
	return err
}
