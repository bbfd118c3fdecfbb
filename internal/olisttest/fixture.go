// Package olisttest provides a small synthetic olist dataset for tests.
//
// Orders o1 and o2 are delivered and complete; o2 has two reviews. o3 is
// canceled, o4 has no delivery date and its seller has no geolocation, o5
// has no items and no review. Prefix 01000 has two geolocation rows.
package olisttest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/require"

	"olist/internal/olist"
)

// Records returns fresh copies of the fixture tables keyed by short name.
func Records() map[string][][]string {
	return map[string][][]string{
		"orders": {
			{"order_id", "customer_id", "order_status", "order_purchase_timestamp", "order_approved_at", "order_delivered_carrier_date", "order_delivered_customer_date", "order_estimated_delivery_date"},
			{"o1", "c1", "delivered", "2020-01-01 00:00:00", "2020-01-01 01:00:00", "2020-01-03 10:00:00", "2020-01-10 00:00:00", "2020-01-15 00:00:00"},
			{"o2", "c2", "delivered", "2020-02-01 12:00:00", "2020-02-01 13:00:00", "2020-02-02 00:00:00", "2020-02-21 12:00:00", "2020-02-15 00:00:00"},
			{"o3", "c3", "canceled", "2020-03-01 00:00:00", "", "", "", "2020-03-20 00:00:00"},
			{"o4", "c4", "delivered", "2020-04-01 00:00:00", "2020-04-01 02:00:00", "", "", "2020-04-20 00:00:00"},
			{"o5", "c1", "delivered", "2020-05-01 00:00:00", "2020-05-01 00:30:00", "2020-05-02 00:00:00", "2020-05-05 00:00:00", "2020-05-10 00:00:00"},
		},
		"order_items": {
			{"order_id", "order_item_id", "product_id", "seller_id", "price", "freight_value"},
			{"o1", "1", "p1", "s1", "10.5", "2.0"},
			{"o1", "2", "p2", "s2", "20.0", "3.5"},
			{"o1", "3", "p2", "s2", "20.0", "3.5"},
			{"o2", "1", "p3", "s1", "99.9", "10"},
			{"o4", "1", "p1", "s3", "5", "1"},
		},
		"order_reviews": {
			{"review_id", "order_id", "review_score"},
			{"r1", "o1", "5"},
			{"r2", "o2", "1"},
			{"r3", "o2", "3"},
			{"r4", "o4", "4"},
			{"r5", "o3", "2"},
		},
		"sellers": {
			{"seller_id", "seller_zip_code_prefix", "seller_city", "seller_state"},
			{"s1", "01000", "sao paulo", "SP"},
			{"s2", "02000", "rio de janeiro", "RJ"},
			{"s3", "99999", "nowhere", "XX"},
		},
		"customers": {
			{"customer_id", "customer_unique_id", "customer_zip_code_prefix", "customer_city", "customer_state"},
			{"c1", "u1", "03000", "belo horizonte", "MG"},
			{"c2", "u2", "01000", "sao paulo", "SP"},
			{"c3", "u3", "02000", "rio de janeiro", "RJ"},
			{"c4", "u4", "03000", "belo horizonte", "MG"},
		},
		"geolocation": {
			{"geolocation_zip_code_prefix", "geolocation_lat", "geolocation_lng", "geolocation_city", "geolocation_state"},
			{"01000", "-23.5", "-46.6", "sao paulo", "SP"},
			{"01000", "-23.6", "-46.7", "sao paulo", "SP"},
			{"02000", "-22.9", "-43.2", "rio de janeiro", "RJ"},
			{"03000", "-19.9", "-43.9", "belo horizonte", "MG"},
		},
	}
}

// Frame builds an all-text table the way olist.Load does.
func Frame(t testing.TB, records [][]string) dataframe.DataFrame {
	t.Helper()
	df, err := olist.FromRecords(records)
	require.NoError(t, err)
	return df
}

// Dataset builds the fixture in memory. Overrides replace whole tables.
func Dataset(t testing.TB, overrides map[string][][]string) olist.Dataset {
	t.Helper()
	recs := Records()
	for name, r := range overrides {
		recs[name] = r
	}
	ds := make(olist.Dataset, len(recs))
	for name, r := range recs {
		ds[name] = Frame(t, r)
	}
	return ds
}

// WriteDir writes the fixture as olist_<name>_dataset.csv files into dir.
func WriteDir(t testing.TB, dir string) {
	t.Helper()
	for name, recs := range Records() {
		f, err := os.Create(filepath.Join(dir, "olist_"+name+"_dataset.csv"))
		require.NoError(t, err)
		w := csv.NewWriter(f)
		require.NoError(t, w.WriteAll(recs))
		require.NoError(t, f.Close())
	}
}
