// Package frame implements the keyed table operations the feature pipeline
// needs on top of gota data frames: grouping by a key column, hash joins,
// and dropping rows with missing values.
package frame

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// MissingColumnError reports a column a table was expected to carry.
type MissingColumnError struct {
	Column string
	Have   []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("frame: missing column %q (have %s)", e.Column, strings.Join(e.Have, ", "))
}

// Require returns a *MissingColumnError for the first absent column.
func Require(df dataframe.DataFrame, cols ...string) error {
	have := df.Names()
	for _, c := range cols {
		if !contains(have, c) {
			return &MissingColumnError{Column: c, Have: have}
		}
	}
	return nil
}

// Strings returns the raw text of a column. Missing elements come back as "".
func Strings(df dataframe.DataFrame, col string) ([]string, error) {
	if err := Require(df, col); err != nil {
		return nil, err
	}
	s := df.Col(col)
	out := make([]string, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		out[i] = e.String()
	}
	return out, nil
}

// Groups holds row indexes per key, keys in first-appearance order.
type Groups struct {
	Keys []string
	Rows [][]int
}

// Len is the number of distinct keys.
func (g Groups) Len() int { return len(g.Keys) }

// GroupBy collects the row indexes of every distinct value of col.
func GroupBy(df dataframe.DataFrame, col string) (Groups, error) {
	keys, err := Strings(df, col)
	if err != nil {
		return Groups{}, err
	}
	pos := make(map[string]int, len(keys))
	var g Groups
	for i, k := range keys {
		p, ok := pos[k]
		if !ok {
			p = len(g.Keys)
			pos[k] = p
			g.Keys = append(g.Keys, k)
			g.Rows = append(g.Rows, nil)
		}
		g.Rows[p] = append(g.Rows[p], i)
	}
	return g, nil
}

// How selects join semantics.
type How int

const (
	// Inner keeps keys present in both tables.
	Inner How = iota
	// Outer keeps keys present in either table; absent values are missing.
	Outer
)

// Join merges b onto a over key. Left columns keep their order and b's
// non-key columns follow; a name clash gets a "_right" suffix. Repeated keys
// fan out like a relational join.
func Join(a, b dataframe.DataFrame, key string, how How) (dataframe.DataFrame, error) {
	aKeys, err := Strings(a, key)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	bKeys, err := Strings(b, key)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	index := make(map[string][]int, len(bKeys))
	for j, k := range bKeys {
		index[k] = append(index[k], j)
	}

	var left, right []int
	matched := make([]bool, len(bKeys))
	for i, k := range aKeys {
		rows := index[k]
		if len(rows) == 0 {
			if how == Outer {
				left = append(left, i)
				right = append(right, -1)
			}
			continue
		}
		for _, j := range rows {
			left = append(left, i)
			right = append(right, j)
			matched[j] = true
		}
	}
	if how == Outer {
		for j, ok := range matched {
			if !ok {
				left = append(left, -1)
				right = append(right, j)
			}
		}
	}

	aNames := a.Names()
	cols := make([]series.Series, 0, a.Ncol()+b.Ncol()-1)
	for _, name := range aNames {
		s := take(a.Col(name), left)
		if name == key {
			s = coalesce(s, take(b.Col(key), right))
		}
		cols = append(cols, s)
	}
	for _, name := range b.Names() {
		if name == key {
			continue
		}
		s := take(b.Col(name), right)
		if contains(aNames, name) {
			s.Name = name + "_right"
		}
		cols = append(cols, s)
	}
	out := dataframe.New(cols...)
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("frame: join on %q: %w", key, out.Err)
	}
	return out, nil
}

// DropMissing keeps only the rows where every column holds a value. Empty
// text counts as missing.
func DropMissing(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	names := df.Names()
	cols := make([]series.Series, len(names))
	for i, n := range names {
		cols[i] = df.Col(n)
	}
	keep := make([]int, 0, df.Nrow())
	for r := 0; r < df.Nrow(); r++ {
		complete := true
		for _, s := range cols {
			if Missing(s.Elem(r)) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, r)
		}
	}
	return Take(df, keep)
}

// Take returns the given rows of df; an index of -1 yields a missing row.
func Take(df dataframe.DataFrame, rows []int) (dataframe.DataFrame, error) {
	names := df.Names()
	cols := make([]series.Series, len(names))
	for i, n := range names {
		cols[i] = take(df.Col(n), rows)
	}
	out := dataframe.New(cols...)
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("frame: take: %w", out.Err)
	}
	return out, nil
}

// Missing reports whether e is NaN or empty text.
func Missing(e series.Element) bool {
	if e.IsNA() {
		return true
	}
	return e.Type() == series.String && e.String() == ""
}

// take gathers rows of s. Floats are copied as float64 so no precision is
// lost to gota's text formatting.
func take(s series.Series, rows []int) series.Series {
	if s.Type() == series.Float {
		vals := s.Float()
		out := make([]float64, len(rows))
		for i, r := range rows {
			if r < 0 {
				out[i] = math.NaN()
				continue
			}
			out[i] = vals[r]
		}
		return series.New(out, series.Float, s.Name)
	}
	recs := s.Records()
	out := make([]string, len(rows))
	for i, r := range rows {
		if r < 0 || s.Elem(r).IsNA() {
			out[i] = "NaN"
			continue
		}
		out[i] = recs[r]
	}
	return series.New(out, s.Type(), s.Name)
}

// coalesce fills the missing elements of s from alt.
func coalesce(s, alt series.Series) series.Series {
	out := make([]string, s.Len())
	for i := range out {
		switch {
		case !s.Elem(i).IsNA():
			out[i] = s.Elem(i).String()
		case !alt.Elem(i).IsNA():
			out[i] = alt.Elem(i).String()
		default:
			out[i] = "NaN"
		}
	}
	return series.New(out, s.Type(), s.Name)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
