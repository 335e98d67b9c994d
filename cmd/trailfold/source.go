package main

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/kezhuw/traildb"
)

const maxLineSize = 16 << 20

// jsonRecord is one line of a JSONL event source.
type jsonRecord struct {
	UUID      string                     `json:"uuid"`
	Timestamp uint64                     `json:"timestamp"`
	Values    map[string]json.RawMessage `json:"values"`
}

// importJSONL adds every event read from r to cons and returns the number of
// events added. Values of fields unknown to cons are ignored.
func importJSONL(r io.Reader, cons *traildb.Constructor) (int, error) {
	fields := cons.Fields()[1:]
	values := make([]string, len(fields))
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	n, line := 0, 0
	for scanner.Scan() {
		line++
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		var rec jsonRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		id, err := uuid.Parse(rec.UUID)
		if err != nil {
			return n, fmt.Errorf("line %d: uuid %q: %w", line, rec.UUID, err)
		}
		for i, name := range fields {
			values[i], err = jsonValue(rec.Values[name])
			if err != nil {
				return n, fmt.Errorf("line %d: field %s: %w", line, name, err)
			}
		}
		if err := cons.Add(id, rec.Timestamp, values); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		n++
	}
	return n, scanner.Err()
}

// jsonValue converts a JSON scalar to its lexicon string. Strings are
// unquoted, null and missing values are empty, other values keep their JSON
// text.
func jsonValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	if raw[0] == '{' || raw[0] == '[' {
		return "", fmt.Errorf("non scalar value %s", raw)
	}
	return string(raw), nil
}

// openSQL opens an event source through a registered database/sql driver,
// "sqlite" or "postgres".
func openSQL(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return db, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// sqlFields returns the columns of table other than the uuid and time
// columns, in table order.
func sqlFields(ctx context.Context, db *sql.DB, table, uuidColumn, timeColumn string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table)+" LIMIT 0")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var fields []string
	var hasUUID, hasTime bool
	for _, c := range columns {
		switch c {
		case uuidColumn:
			hasUUID = true
		case timeColumn:
			hasTime = true
		default:
			fields = append(fields, c)
		}
	}
	if !hasUUID || !hasTime {
		return nil, fmt.Errorf("table %s: missing column %q or %q", table, uuidColumn, timeColumn)
	}
	return fields, nil
}

// importSQL adds every row of table to cons and returns the number of
// events added.
func importSQL(ctx context.Context, db *sql.DB, table, uuidColumn, timeColumn string, fields []string, cons *traildb.Constructor) (int, error) {
	columns := make([]string, 0, len(fields)+2)
	columns = append(columns, quoteIdent(uuidColumn), quoteIdent(timeColumn))
	for _, f := range fields {
		columns = append(columns, quoteIdent(f))
	}
	query := "SELECT " + strings.Join(columns, ", ") + " FROM " + quoteIdent(table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var (
		rawID     any
		timestamp int64
		nulls     = make([]sql.NullString, len(fields))
		values    = make([]string, len(fields))
		dest      = make([]any, 0, len(fields)+2)
	)
	dest = append(dest, &rawID, &timestamp)
	for i := range nulls {
		dest = append(dest, &nulls[i])
	}

	n := 0
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return n, fmt.Errorf("row %d: %w", n+1, err)
		}
		id, err := sqlUUID(rawID)
		if err != nil {
			return n, fmt.Errorf("row %d: %w", n+1, err)
		}
		if timestamp < 0 {
			return n, fmt.Errorf("row %d: negative timestamp %d", n+1, timestamp)
		}
		for i := range nulls {
			values[i] = nulls[i].String
		}
		if err := cons.Add(id, uint64(timestamp), values); err != nil {
			return n, fmt.Errorf("row %d: %w", n+1, err)
		}
		n++
	}
	return n, rows.Err()
}

// sqlUUID accepts uuids stored as text or as 16 byte blobs.
func sqlUUID(v any) (uuid.UUID, error) {
	switch v := v.(type) {
	case string:
		return uuid.Parse(v)
	case []byte:
		if len(v) == 16 {
			return uuid.FromBytes(v)
		}
		return uuid.ParseBytes(v)
	}
	return uuid.Nil, fmt.Errorf("unsupported uuid value %v", v)
}
