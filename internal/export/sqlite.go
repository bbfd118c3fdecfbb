package export

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	_ "modernc.org/sqlite"
)

// RunsTable records every table written by WriteSQLite.
const RunsTable = "pipeline_runs"

// WriteSQLite replaces table in the database at path with the rows of df
// and appends an entry to pipeline_runs. The insert runs in one transaction.
func WriteSQLite(ctx context.Context, path, table, runID string, df dataframe.DataFrame) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	names := df.Names()
	cols := make([]series.Series, len(names))
	defs := make([]string, len(names))
	quoted := make([]string, len(names))
	for i, n := range names {
		cols[i] = df.Col(n)
		quoted[i] = quoteIdent(n)
		defs[i] = quoted[i] + " " + sqliteType(cols[i].Type())
	}
	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+quoteIdent(table)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+quoteIdent(table)+` (`+strings.Join(defs, ",")+`)`); err != nil {
		return err
	}
	ph := strings.TrimRight(strings.Repeat("?,", len(names)), ",")
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+quoteIdent(table)+` (`+strings.Join(quoted, ",")+`) VALUES (`+ph+`)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	args := make([]any, len(cols))
	for r := 0; r < df.Nrow(); r++ {
		for i, s := range cols {
			args[i] = sqliteValue(s, r)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", r, err)
		}
	}
	for _, n := range names {
		if n != "order_id" {
			continue
		}
		idx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s(%s)`, quoteIdent("idx_"+table+"_order_id"), quoteIdent(table), quoteIdent(n))
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+RunsTable+` (
		"run_id" TEXT PRIMARY KEY,
		"table_name" TEXT NOT NULL,
		"row_count" INTEGER NOT NULL,
		"created_at" TEXT NOT NULL
	)`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO `+RunsTable+` ("run_id","table_name","row_count","created_at") VALUES (?,?,?,?)`,
		runID, table, df.Nrow(), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	return tx.Commit()
}

func sqliteType(t series.Type) string {
	switch t {
	case series.Float:
		return "REAL"
	case series.Int, series.Bool:
		return "INTEGER"
	}
	return "TEXT"
}

func sqliteValue(s series.Series, r int) any {
	e := s.Elem(r)
	if e.IsNA() {
		return nil
	}
	switch s.Type() {
	case series.Float:
		f := e.Float()
		if math.IsNaN(f) {
			return nil
		}
		return f
	case series.Int:
		v, err := e.Int()
		if err != nil {
			return nil
		}
		return v
	case series.Bool:
		b, err := e.Bool()
		if err != nil {
			return nil
		}
		if b {
			return 1
		}
		return 0
	}
	return e.String()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
