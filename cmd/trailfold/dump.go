package main

import (
	"bufio"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kezhuw/traildb"
)

// edgeDatabase hands out edge encoded cursors to trail iterators.
type edgeDatabase struct {
	*traildb.DB
}

func (db edgeDatabase) NewCursor() (traildb.Cursor, error) {
	return db.DB.NewCursorWithOptions(&traildb.CursorOptions{EdgeEncoded: true})
}

func newDumpCmd(a *app) *cobra.Command {
	var edge bool
	cmd := &cobra.Command{
		Use:   "dump <db>",
		Short: "Print events of every trail",
		Long: `Dump prints one line per event: trail uuid, timestamp and field=value
pairs. Trails without matching events are omitted.

Filters are clauses separated by '&', each a '|' separated list of
field=value or field!=value terms.

Example:
  trailfold dump out.tdb
  trailfold dump out.tdb --filter 'action=click | action=view & page!=home'
  trailfold dump out.tdb --edge`,
		Args: cobra.ExactArgs(1),
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
			var src traildb.Database = db
			if edge {
				src = edgeDatabase{db}
			}
			return a.dump(cmd.OutOrStdout(), db, src, f)
		},
	}
	cmd.Flags().String("filter", "", "event filter query")
	cmd.Flags().BoolVar(&edge, "edge", false, "print only values changed since the previous event")
	return cmd
}

func (a *app) dump(out io.Writer, db *traildb.DB, src traildb.Database, f *traildb.EventFilter) (err error) {
	it, err := traildb.NewTrailIterator(src, f, &traildb.IteratorOptions{Logger: a.logger})
	if err != nil {
		return err
	}
	defer func() {
		if rerr := it.Release(); err == nil {
			err = rerr
		}
	}()

	w := bufio.NewWriter(out)
	var line []byte
	for it.Next() {
		id, err := db.UUID(it.TrailID())
		if err != nil {
			return err
		}
		cursor := it.Cursor()
		for ev := cursor.Next(); ev != nil; ev = cursor.Next() {
			line = append(line[:0], id.String()...)
			line = append(line, ' ')
			line = strconv.AppendUint(line, ev.Timestamp, 10)
			if line, err = appendItems(line, db, ev.Items); err != nil {
				return err
			}
			line = append(line, '\n')
			if _, err := w.Write(line); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

func appendItems(dst []byte, db *traildb.DB, items []traildb.Item) ([]byte, error) {
	for _, it := range items {
		name, err := db.FieldName(it.Field())
		if err != nil {
			return dst, err
		}
		value, err := db.ItemValue(it)
		if err != nil {
			return dst, err
		}
		dst = append(dst, ' ')
		dst = append(dst, name...)
		dst = append(dst, '=')
		dst = append(dst, value...)
	}
	return dst, nil
}
