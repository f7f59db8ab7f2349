package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestDB opens gorm against a sqlmock connection. Expectations use
// regexp matching so they stay robust against clause ordering.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	return db, mock
}

// newTestRouter builds a router with a stubbed authenticated identity, the
// way the auth middleware would populate it.
func newTestRouter(userId uint) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userId)
		c.Next()
	})
	return r
}

func performJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

var rideColumns = []string{
	"id", "driver_id", "car_number", "car_owner_name", "license_number",
	"departure_loc", "destination_loc", "departure_date", "departure_time",
	"car_type", "seats_available", "price_per_seat", "ride_status",
}

func rideRow(id, driverId uint, seatsAvailable int, priceMinor int64, status string) *sqlmock.Rows {
	return sqlmock.NewRows(rideColumns).AddRow(
		id, driverId, "KA-01-1234", "Asha Rao", "DL-998877",
		"Pune", "Mumbai", time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), "08:30",
		"five_seater", seatsAvailable, priceMinor, status,
	)
}

var bookingColumns = []string{
	"id", "ride_id", "passenger_id", "seats_requested", "booking_status", "booking_request",
}

func bookingRow(id, rideId, passengerId uint, seats int, status, request string) *sqlmock.Rows {
	return sqlmock.NewRows(bookingColumns).AddRow(id, rideId, passengerId, seats, status, request)
}
