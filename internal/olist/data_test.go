package olist_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olist/internal/olist"
	"olist/internal/olisttest"
)

func TestTableName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"olist_order_items_dataset.csv", "order_items"},
		{"olist_orders_dataset.csv", "orders"},
		{"product_category_name_translation.csv", "product_category_name_translation"},
		{"sellers.csv", "sellers"},
		{"/tmp/x/olist_geolocation_dataset.CSV", "geolocation"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, olist.TableName(tc.in), tc.in)
	}
}

func TestLoad_Fixture(t *testing.T) {
	dir := t.TempDir()
	olisttest.WriteDir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("not a table"), 0o644))

	data, err := olist.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"customers", "geolocation", "order_items", "order_reviews", "orders", "sellers"}, data.Names())
	orders, err := data.Table("orders")
	require.NoError(t, err)
	assert.Equal(t, 5, orders.Nrow())

	// prefixes stay text so leading zeros survive
	geo, err := data.Table("geolocation")
	require.NoError(t, err)
	assert.Equal(t, "01000", geo.Col("geolocation_zip_code_prefix").Elem(0).String())
}

func TestLoad_StripsBOM(t *testing.T) {
	dir := t.TempDir()
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("seller_id,seller_zip_code_prefix\ns1,01000\n")...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sellers.csv"), content, 0o644))

	data, err := olist.Load(dir)
	require.NoError(t, err)
	sellers, err := data.Table("sellers")
	require.NoError(t, err)
	assert.Equal(t, []string{"seller_id", "seller_zip_code_prefix"}, sellers.Names())
}

func TestLoad_HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	header := "order_id,order_item_id,product_id,seller_id,price,freight_value\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "olist_order_items_dataset.csv"), []byte(header), 0o644))

	data, err := olist.Load(dir)
	require.NoError(t, err)
	items, err := data.Table("order_items")
	require.NoError(t, err)
	assert.Equal(t, 0, items.Nrow())
	assert.Equal(t, []string{"order_id", "order_item_id", "product_id", "seller_id", "price", "freight_value"}, items.Names())
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sellers.csv"), nil, 0o644))

	_, err := olist.Load(dir)
	var loadErr *olist.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "parse", loadErr.Op)
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := olist.Load(filepath.Join(t.TempDir(), "nope"))
	var loadErr *olist.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "read dir", loadErr.Op)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	olisttest.WriteDir(t, dir)
	bad := filepath.Join(dir, "olist_broken_dataset.csv")
	require.NoError(t, os.WriteFile(bad, []byte("a,b\n1,2,3\n"), 0o644))

	data, err := olist.Load(dir)
	assert.Nil(t, data)
	var loadErr *olist.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "parse", loadErr.Op)
	assert.Equal(t, bad, loadErr.Path)
}

func TestLoad_DuplicateName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "olist_orders_dataset.csv"), []byte("order_id\no1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.csv"), []byte("order_id\no2\n"), 0o644))

	_, err := olist.Load(dir)
	var loadErr *olist.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, err.Error(), `"orders"`)
}

func TestDataset_MissingTable(t *testing.T) {
	data := olisttest.Dataset(t, nil)
	_, err := data.Table("payments")
	var missing *olist.MissingTableError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "payments", missing.Name)
}

func TestPing(t *testing.T) {
	var buf bytes.Buffer
	olist.Ping(&buf)
	assert.Equal(t, "pong\n", buf.String())
}
