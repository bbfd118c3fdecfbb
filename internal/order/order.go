// Package order derives per-order feature tables from the olist dataset and
// composes them into one training table keyed by order_id.
package order

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"

	"olist/internal/frame"
	"olist/internal/olist"
)

// Table names as produced by olist.TableName.
const (
	ordersTable      = "orders"
	itemsTable       = "order_items"
	reviewsTable     = "order_reviews"
	sellersTable     = "sellers"
	customersTable   = "customers"
	geolocationTable = "geolocation"
)

// Column names.
const (
	ColOrderID                = "order_id"
	ColWaitTime               = "wait_time"
	ColExpectedWaitTime       = "expected_wait_time"
	ColDelayVsExpected        = "delay_vs_expected"
	ColOrderStatus            = "order_status"
	ColFiveStar               = "dim_is_five_star"
	ColOneStar                = "dim_is_one_star"
	ColReviewScore            = "review_score"
	ColNumberOfProducts       = "number_of_products"
	ColNumberOfSellers        = "number_of_sellers"
	ColPrice                  = "price"
	ColFreightValue           = "freight_value"
	ColDistanceSellerCustomer = "distance_seller_customer"
)

// Wait-time status filters. An empty status means StatusDelivered.
const (
	StatusDelivered = "delivered"
	AnyStatus       = "*"
)

// TieBreak picks one coordinate when several geolocation rows share a
// postal prefix.
type TieBreak string

const (
	// TieLowest takes the smallest (lat, lng) pair, independent of row order.
	TieLowest TieBreak = "lowest"
	// TieFirst takes the first row as loaded.
	TieFirst TieBreak = "first"
)

// ParseTieBreak accepts "lowest", "first" or "" (lowest).
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(strings.ToLower(strings.TrimSpace(s))) {
	case "", TieLowest:
		return TieLowest, nil
	case TieFirst:
		return TieFirst, nil
	}
	return "", fmt.Errorf("order: unknown geolocation tie-break %q", s)
}

// Options tune extractor behaviour.
type Options struct {
	// DistinctSellers counts distinct seller_id values for number_of_sellers
	// instead of item rows.
	DistinctSellers bool
	GeoTieBreak     TieBreak
}

// ParseError reports a cell that could not be read as the expected type.
type ParseError struct {
	Table  string
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("order: parse %s.%s row %d value %q: %v", e.Table, e.Column, e.Row, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Order computes features over one loaded dataset. It keeps no results
// between calls.
type Order struct {
	data olist.Dataset
	opts Options
	log  *zap.Logger
}

// New returns an Order over data. A nil logger discards output.
func New(data olist.Dataset, opts Options, log *zap.Logger) *Order {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.GeoTieBreak == "" {
		opts.GeoTieBreak = TieLowest
	}
	return &Order{data: data, opts: opts, log: log}
}

// columns fetches a table and the raw text of the requested columns.
func (o *Order) columns(table string, cols ...string) (dataframe.DataFrame, [][]string, error) {
	df, err := o.data.Table(table)
	if err != nil {
		return dataframe.DataFrame{}, nil, err
	}
	if err := frame.Require(df, cols...); err != nil {
		return dataframe.DataFrame{}, nil, fmt.Errorf("order: table %s: %w", table, err)
	}
	out := make([][]string, len(cols))
	for i, c := range cols {
		if out[i], err = frame.Strings(df, c); err != nil {
			return dataframe.DataFrame{}, nil, err
		}
	}
	return df, out, nil
}

// parseFloat reads a numeric cell; ok is false for an empty cell.
func parseFloat(table, col string, row int, v string) (f float64, ok bool, err error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false, nil
	}
	f, err = strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, &ParseError{Table: table, Column: col, Row: row, Value: v, Err: err}
	}
	return f, true, nil
}
