package order

import (
	"context"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"olist/internal/frame"
)

// TrainingOptions select what TrainingData composes.
type TrainingOptions struct {
	// Status filters the wait-time table. The zero value keeps delivered
	// orders; AnyStatus keeps every order.
	Status       string
	WithDistance bool
}

// TrainingSet is one composed table and the id of the run that built it.
type TrainingSet struct {
	RunID string
	Frame dataframe.DataFrame
}

// TrainingData recomputes every feature table, inner-joins them on
// order_id and drops incomplete rows. With distance, the distance table is
// outer-joined on top and incomplete rows are dropped again.
func (o *Order) TrainingData(ctx context.Context, opts TrainingOptions) (TrainingSet, error) {
	runID := uuid.NewString()
	log := o.log.With(zap.String("run_id", runID))

	extractors := []struct {
		name string
		fn   func() (dataframe.DataFrame, error)
	}{
		{"wait_time", func() (dataframe.DataFrame, error) { return o.WaitTime(opts.Status) }},
		{"review_score", o.ReviewScore},
		{"number_of_products", o.NumberOfProducts},
		{"number_of_sellers", o.NumberOfSellers},
		{"price_and_freight", o.PriceAndFreight},
	}

	var composed dataframe.DataFrame
	for i, ex := range extractors {
		if err := ctx.Err(); err != nil {
			return TrainingSet{}, err
		}
		df, err := ex.fn()
		if err != nil {
			return TrainingSet{}, fmt.Errorf("%s: %w", ex.name, err)
		}
		log.Debug("feature table ready", zap.String("table", ex.name), zap.Int("rows", df.Nrow()))
		if i == 0 {
			composed = df
			continue
		}
		if composed, err = frame.Join(composed, df, ColOrderID, frame.Inner); err != nil {
			return TrainingSet{}, err
		}
	}
	composed, err := frame.DropMissing(composed)
	if err != nil {
		return TrainingSet{}, err
	}

	if opts.WithDistance {
		if err := ctx.Err(); err != nil {
			return TrainingSet{}, err
		}
		distance, err := o.DistanceSellerCustomer()
		if err != nil {
			return TrainingSet{}, fmt.Errorf("distance_seller_customer: %w", err)
		}
		if composed, err = frame.Join(composed, distance, ColOrderID, frame.Outer); err != nil {
			return TrainingSet{}, err
		}
		if composed, err = frame.DropMissing(composed); err != nil {
			return TrainingSet{}, err
		}
	}

	log.Info("training data composed",
		zap.String("status", opts.Status),
		zap.Bool("with_distance", opts.WithDistance),
		zap.Int("rows", composed.Nrow()),
		zap.Int("columns", composed.Ncol()),
	)
	return TrainingSet{RunID: runID, Frame: composed}, nil
}
