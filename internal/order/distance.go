package order

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"

	"olist/internal/geo"
)

type coord struct {
	lat, lng float64
}

func (c coord) less(d coord) bool {
	if c.lat != d.lat {
		return c.lat < d.lat
	}
	return c.lng < d.lng
}

// DistanceSellerCustomer returns [order_id, distance_seller_customer]: the
// mean haversine distance in km between seller and customer over the items
// of each order. Items whose seller or customer cannot be placed are
// dropped, and so are orders left without items.
func (o *Order) DistanceSellerCustomer() (dataframe.DataFrame, error) {
	geoByPrefix, err := o.geolocations()
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	sellerZip, err := o.lookup(sellersTable, "seller_id", "seller_zip_code_prefix")
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	customerZip, err := o.lookup(customersTable, "customer_id", "customer_zip_code_prefix")
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	orderCustomer, err := o.lookup(ordersTable, ColOrderID, "customer_id")
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	_, cols, err := o.columns(itemsTable, ColOrderID, "seller_id")
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	pos := make(map[string]int)
	var ids []string
	var sum []float64
	var n []int
	dropped := 0
	for i, id := range cols[0] {
		seller, ok := geoByPrefix[sellerZip[cols[1][i]]]
		if !ok {
			dropped++
			continue
		}
		customer, ok := geoByPrefix[customerZip[orderCustomer[id]]]
		if !ok {
			dropped++
			continue
		}
		p, seen := pos[id]
		if !seen {
			p = len(ids)
			pos[id] = p
			ids = append(ids, id)
			sum = append(sum, 0)
			n = append(n, 0)
		}
		sum[p] += geo.Haversine(seller.lng, seller.lat, customer.lng, customer.lat)
		n[p]++
	}
	mean := make([]float64, len(ids))
	for p := range ids {
		mean[p] = sum[p] / float64(n[p])
	}
	o.log.Debug("seller-customer distance extracted", zap.Int("orders", len(ids)), zap.Int("items_dropped", dropped))

	df := dataframe.New(
		series.New(ids, series.String, ColOrderID),
		series.New(mean, series.Float, ColDistanceSellerCustomer),
	)
	return df, df.Err
}

// geolocations resolves each postal prefix to one coordinate using the
// configured tie-break. Rows with an empty coordinate are ignored.
func (o *Order) geolocations() (map[string]coord, error) {
	const (
		prefixCol = "geolocation_zip_code_prefix"
		latCol    = "geolocation_lat"
		lngCol    = "geolocation_lng"
	)
	_, cols, err := o.columns(geolocationTable, prefixCol, latCol, lngCol)
	if err != nil {
		return nil, err
	}
	out := make(map[string]coord)
	for i, prefix := range cols[0] {
		if prefix == "" {
			continue
		}
		lat, okLat, err := parseFloat(geolocationTable, latCol, i, cols[1][i])
		if err != nil {
			return nil, err
		}
		lng, okLng, err := parseFloat(geolocationTable, lngCol, i, cols[2][i])
		if err != nil {
			return nil, err
		}
		if !okLat || !okLng {
			continue
		}
		c := coord{lat: lat, lng: lng}
		prev, seen := out[prefix]
		switch {
		case !seen:
			out[prefix] = c
		case o.opts.GeoTieBreak == TieLowest && c.less(prev):
			out[prefix] = c
		}
	}
	return out, nil
}

// lookup maps key to value for a table where key is unique. The first row
// wins if it is not.
func (o *Order) lookup(table, key, value string) (map[string]string, error) {
	_, cols, err := o.columns(table, key, value)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(cols[0]))
	for i, k := range cols[0] {
		if k == "" || cols[1][i] == "" {
			continue
		}
		if _, ok := out[k]; !ok {
			out[k] = cols[1][i]
		}
	}
	return out, nil
}
