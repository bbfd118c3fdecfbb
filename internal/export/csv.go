// Package export writes composed feature tables to CSV and SQLite.
package export

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// WriteCSV writes df with a UTF-8 BOM and a header row. Floats use
// pandas-style text ("9.0"); missing values are empty.
func WriteCSV(path string, df dataframe.DataFrame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	if err := writeRecords(f, df); err != nil {
		return err
	}
	return f.Close()
}

func writeRecords(w io.Writer, df dataframe.DataFrame) error {
	names := df.Names()
	if err := writeRecord(w, names); err != nil {
		return err
	}
	cols := make([]series.Series, len(names))
	for i, n := range names {
		cols[i] = df.Col(n)
	}
	rec := make([]string, len(cols))
	for r := 0; r < df.Nrow(); r++ {
		for i, s := range cols {
			rec[i] = cellString(s, r)
		}
		if err := writeRecord(w, rec); err != nil {
			return err
		}
	}
	return nil
}

func cellString(s series.Series, r int) string {
	e := s.Elem(r)
	if e.IsNA() {
		return ""
	}
	if s.Type() == series.Float {
		return pythonLikeFloatString(e.Float())
	}
	return e.String()
}

func writeRecord(w io.Writer, rec []string) error {
	for i, field := range rec {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if needsCSVQuote(field) {
			field = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
		}
		if _, err := io.WriteString(w, field); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func needsCSVQuote(s string) bool {
	return strings.ContainsAny(s, ",\"\n\r")
}

func pythonLikeFloatString(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		// integral floats keep a trailing .0
		return s + ".0"
	}
	return s
}
