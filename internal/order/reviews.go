package order

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
)

// ReviewScore returns [order_id, dim_is_five_star, dim_is_one_star,
// review_score], one row per review. An order reviewed twice appears twice.
func (o *Order) ReviewScore() (dataframe.DataFrame, error) {
	_, cols, err := o.columns(reviewsTable, ColOrderID, ColReviewScore)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	ids, raw := cols[0], cols[1]

	scores := make([]int, len(ids))
	five := make([]int, len(ids))
	one := make([]int, len(ids))
	for i, v := range raw {
		score, err := parseScore(i, v)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		scores[i] = score
		if score == 5 {
			five[i] = 1
		}
		if score == 1 {
			one[i] = 1
		}
	}
	o.log.Debug("review scores extracted", zap.Int("rows", len(ids)))

	df := dataframe.New(
		series.New(ids, series.String, ColOrderID),
		series.New(five, series.Int, ColFiveStar),
		series.New(one, series.Int, ColOneStar),
		series.New(scores, series.Int, ColReviewScore),
	)
	return df, df.Err
}

func parseScore(row int, v string) (int, error) {
	v = strings.TrimSpace(v)
	score, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ParseError{Table: reviewsTable, Column: ColReviewScore, Row: row, Value: v, Err: err}
	}
	if score < 1 || score > 5 {
		return 0, &ParseError{Table: reviewsTable, Column: ColReviewScore, Row: row, Value: v, Err: fmt.Errorf("score outside 1..5")}
	}
	return score, nil
}
