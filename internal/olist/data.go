// Package olist loads the olist CSV export into named tables.
package olist

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Dataset maps a short table name ("orders", "order_items", ...) to its rows.
type Dataset map[string]dataframe.DataFrame

// LoadError reports a directory or file that could not be turned into a table.
type LoadError struct {
	Op   string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("olist: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// MissingTableError is returned by Dataset.Table for an unknown name.
type MissingTableError struct {
	Name string
}

func (e *MissingTableError) Error() string {
	return fmt.Sprintf("olist: table %q not loaded", e.Name)
}

// Load reads every .csv file directly under dir. Either every file loads
// or an error is returned; there is no partial dataset.
func Load(dir string) (Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Op: "read dir", Path: dir, Err: err}
	}
	ds := make(Dataset)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		name := TableName(e.Name())
		if _, dup := ds[name]; dup {
			return nil, &LoadError{Op: "load", Path: path, Err: fmt.Errorf("table %q already loaded from another file", name)}
		}
		df, err := loadCSV(path)
		if err != nil {
			return nil, &LoadError{Op: "parse", Path: path, Err: err}
		}
		ds[name] = df
	}
	return ds, nil
}

// TableName derives the short name from a file name:
// "olist_order_items_dataset.csv" and "order_items.csv" both give "order_items".
func TableName(file string) string {
	name := filepath.Base(file)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.TrimPrefix(name, "olist_")
	name = strings.TrimSuffix(name, "_dataset")
	return name
}

func loadCSV(path string) (dataframe.DataFrame, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
	records, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return FromRecords(records)
}

// FromRecords builds a table from a header row and its data rows. Every
// column is text. A header with no rows gives an empty table with those
// columns.
func FromRecords(records [][]string) (dataframe.DataFrame, error) {
	if len(records) == 0 {
		return dataframe.DataFrame{}, errors.New("no header row")
	}
	if len(records) == 1 {
		cols := make([]series.Series, len(records[0]))
		for i, name := range records[0] {
			cols[i] = series.New([]string{}, series.String, name)
		}
		df := dataframe.New(cols...)
		return df, df.Err
	}
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, df.Err
	}
	return df, nil
}

// Table returns the named table.
func (d Dataset) Table(name string) (dataframe.DataFrame, error) {
	df, ok := d[name]
	if !ok {
		return dataframe.DataFrame{}, &MissingTableError{Name: name}
	}
	return df, nil
}

// Names returns the loaded table names in sorted order.
func (d Dataset) Names() []string {
	names := make([]string, 0, len(d))
	for n := range d {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Ping writes the liveness acknowledgment.
func Ping(w io.Writer) {
	fmt.Fprintln(w, "pong")
}
