package handlers

import (
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRide_Success(t *testing.T) {
	db, mock := newTestDB(t)
	r := newTestRouter(7)
	r.POST("/rides/publish", PublishRide(db))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "rides"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	w := performJSON(t, r, "POST", "/rides/publish", map[string]interface{}{
		"carNumber":      "KA-01-1234",
		"carOwnerName":   "Asha Rao",
		"licenseNumber":  "DL-998877",
		"departure":      "Pune",
		"destination":    "Mumbai",
		"departureDate":  "2026-09-10",
		"departureTime":  "08:30",
		"carType":        "five_seater",
		"seatsAvailable": 4,
		"pricePerSeat":   250.50,
	})

	require.Equal(t, 200, w.Code)
	body := decodeBody(t, w)
	ride, ok := body["ride"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "active", ride["status"])
	assert.Equal(t, 250.50, ride["pricePerSeat"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishRide_UnknownCarType(t *testing.T) {
	db, mock := newTestDB(t)
	r := newTestRouter(7)
	r.POST("/rides/publish", PublishRide(db))

	w := performJSON(t, r, "POST", "/rides/publish", map[string]interface{}{
		"carNumber":      "KA-01-1234",
		"carOwnerName":   "Asha Rao",
		"licenseNumber":  "DL-998877",
		"departure":      "Pune",
		"destination":    "Mumbai",
		"departureDate":  "2026-09-10",
		"departureTime":  "08:30",
		"carType":        "two_seater",
		"seatsAvailable": 1,
		"pricePerSeat":   250.50,
	})

	require.Equal(t, 400, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishRide_SeatsExceedCapacity(t *testing.T) {
	db, mock := newTestDB(t)
	r := newTestRouter(7)
	r.POST("/rides/publish", PublishRide(db))

	w := performJSON(t, r, "POST", "/rides/publish", map[string]interface{}{
		"carNumber":      "KA-01-1234",
		"carOwnerName":   "Asha Rao",
		"licenseNumber":  "DL-998877",
		"departure":      "Pune",
		"destination":    "Mumbai",
		"departureDate":  "2026-09-10",
		"departureTime":  "08:30",
		"carType":        "five_seater",
		"seatsAvailable": 5,
		"pricePerSeat":   250.50,
	})

	require.Equal(t, 400, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "exceed car capacity")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchRides_MissingParams(t *testing.T) {
	db, mock := newTestDB(t)
	r := newTestRouter(0)
	r.GET("/rides/search", SearchRides(db))

	w := performJSON(t, r, "GET", "/rides/search?departure=Pune", nil)

	require.Equal(t, 400, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchRides_NoMatchesIsNotFound(t *testing.T) {
	db, mock := newTestDB(t)
	r := newTestRouter(0)
	r.GET("/rides/search", SearchRides(db))

	mock.ExpectQuery(`SELECT \* FROM "rides"`).
		WillReturnRows(sqlmock.NewRows(rideColumns))

	w := performJSON(t, r, "GET", "/rides/search?departure=Pune&destination=Goa&date=2026-09-10", nil)

	require.Equal(t, 404, w.Code)
	assert.Equal(t, "No rides found for given criteria", decodeBody(t, w)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchRides_ReturnsMatches(t *testing.T) {
	db, mock := newTestDB(t)
	r := newTestRouter(0)
	r.GET("/rides/search", SearchRides(db))

	mock.ExpectQuery(`SELECT \* FROM "rides"`).
		WillReturnRows(rideRow(1, 7, 3, 25050, "active"))
	// Driver preload
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone"}).
			AddRow(7, "Asha Rao", "9876543210"))

	w := performJSON(t, r, "GET", "/rides/search?departure=pune&destination=mumbai&date=2026-09-10", nil)

	require.Equal(t, 200, w.Code)
	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, 250.50, results[0]["pricePerSeat"])
	assert.Equal(t, "Asha Rao", results[0]["driverName"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMyRides_IncludesBookedSeatCounts(t *testing.T) {
	db, mock := newTestDB(t)
	r := newTestRouter(7)
	r.GET("/rides/my-rides", GetMyRides(db))

	mock.ExpectQuery(`SELECT \* FROM "rides"`).
		WillReturnRows(rideRow(1, 7, 2, 25050, "active"))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(seats_requested\), 0\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(2))

	w := performJSON(t, r, "GET", "/rides/my-rides", nil)

	require.Equal(t, 200, w.Code)
	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, float64(2), results[0]["seatsBooked"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMyRides_StatusFilter(t *testing.T) {
	db, mock := newTestDB(t)
	r := newTestRouter(7)
	r.GET("/rides/my-rides", GetMyRides(db))

	mock.ExpectQuery(`SELECT \* FROM "rides"`).
		WillReturnRows(sqlmock.NewRows(rideColumns))

	w := performJSON(t, r, "GET", "/rides/my-rides?status=cancelled", nil)

	require.Equal(t, 200, w.Code)
	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Empty(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMyRides_UnknownStatusFilter(t *testing.T) {
	db, mock := newTestDB(t)
	r := newTestRouter(7)
	r.GET("/rides/my-rides", GetMyRides(db))

	w := performJSON(t, r, "GET", "/rides/my-rides?status=paused", nil)

	require.Equal(t, 400, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "invalid ride status")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRide_Success(t *testing.T) {
	db, mock := newTestDB(t)
	r := newTestRouter(7)
	r.PUT("/rides/cancel/:rideId", CancelRide(db))

	mock.ExpectQuery(`SELECT \* FROM "rides"`).
		WillReturnRows(rideRow(1, 7, 4, 25050, "active"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "rides" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performJSON(t, r, "PUT", "/rides/cancel/1", nil)

	require.Equal(t, 200, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRide_NotOwner(t *testing.T) {
	db, mock := newTestDB(t)
	r := newTestRouter(9)
	r.PUT("/rides/cancel/:rideId", CancelRide(db))

	// Owner-scoped lookup comes back empty for another user's ride.
	mock.ExpectQuery(`SELECT \* FROM "rides"`).
		WillReturnRows(sqlmock.NewRows(rideColumns))

	w := performJSON(t, r, "PUT", "/rides/cancel/1", nil)

	require.Equal(t, 404, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRide_AlreadyCancelled(t *testing.T) {
	db, mock := newTestDB(t)
	r := newTestRouter(7)
	r.PUT("/rides/cancel/:rideId", CancelRide(db))

	mock.ExpectQuery(`SELECT \* FROM "rides"`).
		WillReturnRows(rideRow(1, 7, 4, 25050, "cancelled"))

	w := performJSON(t, r, "PUT", "/rides/cancel/1", nil)

	require.Equal(t, 400, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "Only active rides")
	assert.NoError(t, mock.ExpectationsWereMet())
}
