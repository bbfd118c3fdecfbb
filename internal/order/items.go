package order

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"

	"olist/internal/frame"
)

// NumberOfProducts returns [order_id, number_of_products]: the number of
// item rows per order, not distinct products.
func (o *Order) NumberOfProducts() (dataframe.DataFrame, error) {
	return o.countItems("product_id", ColNumberOfProducts, false)
}

// NumberOfSellers returns [order_id, number_of_sellers]. By default this
// counts item rows like NumberOfProducts; Options.DistinctSellers counts
// distinct seller_id values instead.
func (o *Order) NumberOfSellers() (dataframe.DataFrame, error) {
	return o.countItems("seller_id", ColNumberOfSellers, o.opts.DistinctSellers)
}

func (o *Order) countItems(col, name string, distinct bool) (dataframe.DataFrame, error) {
	items, cols, err := o.columns(itemsTable, ColOrderID, col)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	values := cols[1]
	groups, err := frame.GroupBy(items, ColOrderID)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	counts := make([]int, groups.Len())
	for g, rows := range groups.Rows {
		seen := make(map[string]struct{})
		for _, r := range rows {
			v := values[r]
			if v == "" {
				continue
			}
			if distinct {
				if _, dup := seen[v]; dup {
					continue
				}
				seen[v] = struct{}{}
			}
			counts[g]++
		}
	}
	o.log.Debug("item counts extracted", zap.String("column", name), zap.Bool("distinct", distinct), zap.Int("orders", groups.Len()))

	df := dataframe.New(
		series.New(groups.Keys, series.String, ColOrderID),
		series.New(counts, series.Int, name),
	)
	return df, df.Err
}

// PriceAndFreight returns [order_id, price, freight_value] summed per order.
// Empty cells are skipped.
func (o *Order) PriceAndFreight() (dataframe.DataFrame, error) {
	items, cols, err := o.columns(itemsTable, ColOrderID, ColPrice, ColFreightValue)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	groups, err := frame.GroupBy(items, ColOrderID)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	price := make([]float64, groups.Len())
	freight := make([]float64, groups.Len())
	for g, rows := range groups.Rows {
		for _, r := range rows {
			p, ok, err := parseFloat(itemsTable, ColPrice, r, cols[1][r])
			if err != nil {
				return dataframe.DataFrame{}, err
			}
			if ok {
				price[g] += p
			}
			f, ok, err := parseFloat(itemsTable, ColFreightValue, r, cols[2][r])
			if err != nil {
				return dataframe.DataFrame{}, err
			}
			if ok {
				freight[g] += f
			}
		}
	}
	o.log.Debug("price and freight extracted", zap.Int("orders", groups.Len()))

	df := dataframe.New(
		series.New(groups.Keys, series.String, ColOrderID),
		series.New(price, series.Float, ColPrice),
		series.New(freight, series.Float, ColFreightValue),
	)
	return df, df.Err
}
