package export

import (
	"context"
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"o1", "o,2"}, series.String, "order_id"),
		series.New([]float64{9, -5.5}, series.Float, "wait_time"),
		series.New([]int{3, 1}, series.Int, "number_of_products"),
		series.New([]float64{12.25, math.NaN()}, series.Float, "distance_seller_customer"),
	)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "training.csv")
	require.NoError(t, WriteCSV(path, sample()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "\ufefforder_id,wait_time,number_of_products,distance_seller_customer\n" +
		"o1,9.0,3,12.25\n" +
		"\"o,2\",-5.5,1,\n"
	assert.Equal(t, want, string(b))
}

func TestPythonLikeFloatString(t *testing.T) {
	assert.Equal(t, "9.0", pythonLikeFloatString(9))
	assert.Equal(t, "0.1", pythonLikeFloatString(0.1))
	assert.Equal(t, "1e+21", pythonLikeFloatString(1e21))
	assert.Equal(t, "", pythonLikeFloatString(math.NaN()))
}

func TestWriteSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "features.sqlite")

	require.NoError(t, WriteSQLite(ctx, path, "training_data", "run-1", sample()))
	require.NoError(t, WriteSQLite(ctx, path, "training_data", "run-2", sample()))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "training_data"`).Scan(&rows))
	assert.Equal(t, 2, rows, "table is replaced, not appended")

	var wait float64
	var products int
	var distance sql.NullFloat64
	require.NoError(t, db.QueryRow(`SELECT wait_time, number_of_products, distance_seller_customer FROM training_data WHERE order_id = ?`, "o,2").
		Scan(&wait, &products, &distance))
	assert.Equal(t, -5.5, wait)
	assert.Equal(t, 1, products)
	assert.False(t, distance.Valid)

	var runs int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+RunsTable+` WHERE table_name = 'training_data'`).Scan(&runs))
	assert.Equal(t, 2, runs)

	var colType string
	require.NoError(t, db.QueryRow(`SELECT type FROM pragma_table_info('training_data') WHERE name = 'wait_time'`).Scan(&colType))
	assert.Equal(t, "REAL", colType)
}
