package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olist/internal/order"
	"olist/internal/olisttest"
)

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func newServer(t *testing.T) *Server {
	t.Helper()
	return New(olisttest.Dataset(t, nil), order.Options{}, order.StatusDelivered, nil)
}

func TestPing(t *testing.T) {
	rec := get(t, newServer(t), "/ping")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestTables(t *testing.T) {
	rec := get(t, newServer(t), "/v1/tables")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tables []tableInfo `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tables, 6)
	assert.Equal(t, "customers", body.Tables[0].Name)
	assert.Equal(t, 4, body.Tables[0].Rows)
}

type trainingBody struct {
	RunID string           `json:"run_id"`
	Rows  int              `json:"rows"`
	Data  []map[string]any `json:"data"`
	Error string           `json:"error"`
}

func TestTrainingData(t *testing.T) {
	rec := get(t, newServer(t), "/v1/training-data?with_distance=true&limit=2")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body trainingBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.RunID)
	assert.Equal(t, 3, body.Rows)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "o1", body.Data[0][order.ColOrderID])
	assert.Equal(t, 9.0, body.Data[0][order.ColWaitTime])
	assert.Contains(t, body.Data[0], order.ColDistanceSellerCustomer)
}

func TestTrainingData_StatusFilter(t *testing.T) {
	rec := get(t, newServer(t), "/v1/training-data?status=canceled")
	require.Equal(t, http.StatusOK, rec.Code)

	var body trainingBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Rows, "o3 was never delivered")
}

func TestTrainingData_BadQuery(t *testing.T) {
	s := newServer(t)
	for _, target := range []string{"/v1/training-data?with_distance=maybe", "/v1/training-data?limit=-1"} {
		rec := get(t, s, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)

		var body trainingBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Error)
	}
}

func TestTrainingData_Failure(t *testing.T) {
	data := olisttest.Dataset(t, nil)
	delete(data, "order_reviews")
	s := New(data, order.Options{}, order.StatusDelivered, nil)

	rec := get(t, s, "/v1/training-data")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "order_reviews")
}
