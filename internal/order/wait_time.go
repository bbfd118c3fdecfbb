package order

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

var errTimestamp = errors.New("unrecognised timestamp layout")

// WaitTime returns [order_id, wait_time, expected_wait_time,
// delay_vs_expected, order_status] for orders in the given status. An empty
// status means StatusDelivered and AnyStatus keeps every order. Durations
// are in days and may be negative.
func (o *Order) WaitTime(status string) (dataframe.DataFrame, error) {
	const (
		purchaseCol  = "order_purchase_timestamp"
		carrierCol   = "order_delivered_carrier_date"
		deliveredCol = "order_delivered_customer_date"
		estimateCol  = "order_estimated_delivery_date"
	)
	_, cols, err := o.columns(ordersTable, ColOrderID, ColOrderStatus, purchaseCol, carrierCol, deliveredCol, estimateCol)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	ids, statuses := cols[0], cols[1]
	if status == "" {
		status = StatusDelivered
	}

	var outIDs, outStatus []string
	var wait, expected, delay []float64
	for i := range ids {
		if status != AnyStatus && statuses[i] != status {
			continue
		}
		var ts [4]time.Time
		var present [4]bool
		for k, name := range []string{purchaseCol, carrierCol, deliveredCol, estimateCol} {
			ts[k], present[k], err = parseTimestamp(name, i, cols[2+k][i])
			if err != nil {
				return dataframe.DataFrame{}, err
			}
		}
		w, e := math.NaN(), math.NaN()
		if present[0] && present[2] {
			w = Days(ts[2].Sub(ts[0]))
		}
		if present[0] && present[3] {
			e = Days(ts[3].Sub(ts[0]))
		}
		outIDs = append(outIDs, ids[i])
		outStatus = append(outStatus, statuses[i])
		wait = append(wait, w)
		expected = append(expected, e)
		delay = append(delay, w-e)
	}
	o.log.Debug("wait time extracted", zap.String("status", status), zap.Int("rows", len(outIDs)))

	df := dataframe.New(
		series.New(outIDs, series.String, ColOrderID),
		series.New(wait, series.Float, ColWaitTime),
		series.New(expected, series.Float, ColExpectedWaitTime),
		series.New(delay, series.Float, ColDelayVsExpected),
		series.New(outStatus, series.String, ColOrderStatus),
	)
	return df, df.Err
}

// Days converts a duration to fractional days.
func Days(d time.Duration) float64 { return d.Hours() / 24 }

// Duration converts fractional days back to a duration.
func Duration(days float64) time.Duration {
	return time.Duration(math.Round(days * 24 * float64(time.Hour)))
}

func parseTimestamp(col string, row int, v string) (time.Time, bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, &ParseError{Table: ordersTable, Column: col, Row: row, Value: v, Err: errTimestamp}
}
