package store

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinscan-service/internal/domain/vehicle"
)

func defaultSettings() vehicle.Settings {
	return vehicle.Settings{
		CompanyName:      "STOCK AUTO MAROC",
		AllowedLocations: []string{"RECEPTION", "SHOWROOM"},
		BusinessType:     vehicle.BusinessUsed,
	}
}

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	st, err := Open(backend, defaultSettings(), zerolog.Nop())
	require.NoError(t, err)
	return st
}

func record(vin, mk, model, location string) vehicle.Record {
	return vehicle.Record{
		ID:       vin,
		VIN:      vin,
		Make:     mk,
		Model:    model,
		Location: location,
		FullDate: "29/08/2026",
		Timestamp: "10:30",
	}
}

func TestAppendIsMostRecentFirst(t *testing.T) {
	st := openTestStore(t, t.TempDir())

	st.Append(record("VIN1", "RENAULT", "CLIO", "RECEPTION"))
	st.Append(record("VIN2", "MG", "MG4", "SHOWROOM"))

	all := st.Search("")
	require.Len(t, all, 2)
	assert.Equal(t, "VIN2", all[0].VIN)
	assert.Equal(t, "VIN1", all[1].VIN)
}

func TestSearchMatchesAcrossFieldsCaseInsensitively(t *testing.T) {
	st := openTestStore(t, t.TempDir())
	st.Append(record("WVWZZZ1K5XW000001", "VOLKSWAGEN", "GOLF", "RECEPTION"))
	st.Append(record("VF1RFB00066666666", "RENAULT", "CLIO", "SHOWROOM"))

	tests := []struct {
		term string
		want string
	}{
		{"zzz1k", "WVWZZZ1K5XW000001"},
		{"renault", "VF1RFB00066666666"},
		{"golf", "WVWZZZ1K5XW000001"},
		{"showroom", "VF1RFB00066666666"},
	}
	for _, tt := range tests {
		got := st.Search(tt.term)
		require.Len(t, got, 1, "term %q", tt.term)
		assert.Equal(t, tt.want, got[0].VIN)
	}

	assert.Len(t, st.Search("nomatch"), 0)
	assert.Len(t, st.Search(""), 2, "empty term returns the full view")
	assert.Equal(t, 2, st.Len(), "search never mutates the collection")
}

func TestSearchMatchesPlate(t *testing.T) {
	st := openTestStore(t, t.TempDir())
	rec := record("VIN1", "MG", "MG4", "RECEPTION")
	rec.Plate = "12345-A-6"
	st.Append(rec)

	require.Len(t, st.Search("345-a"), 1)
}

func TestRemovePreservesOrder(t *testing.T) {
	st := openTestStore(t, t.TempDir())
	st.Append(record("VIN1", "A", "A1", "RECEPTION"))
	st.Append(record("VIN2", "B", "B1", "RECEPTION"))
	st.Append(record("VIN3", "C", "C1", "RECEPTION"))

	// Display order is VIN3, VIN2, VIN1; drop the middle one.
	require.NoError(t, st.Remove(1))

	all := st.Search("")
	require.Len(t, all, 2)
	assert.Equal(t, "VIN3", all[0].VIN)
	assert.Equal(t, "VIN1", all[1].VIN)

	assert.ErrorIs(t, st.Remove(5), ErrIndexOutOfRange)
	assert.ErrorIs(t, st.Remove(-1), ErrIndexOutOfRange)
}

func TestClear(t *testing.T) {
	st := openTestStore(t, t.TempDir())
	st.Append(record("VIN1", "A", "A1", "RECEPTION"))
	st.Clear()
	assert.Equal(t, 0, st.Len())
}

func TestHistoryRoundTrip(t *testing.T) {
	dir := t.TempDir()

	st := openTestStore(t, dir)
	rec := record("WVWZZZ1K5XW000001", "VOLKSWAGEN", "GOLF", "RECEPTION")
	rec.Plate = "1234-A-5"
	rec.Year = "2019"
	rec.Remarks = "rayure aile avant"
	st.Append(rec)
	st.Append(record("VIN2", "MG", "MG4", "SHOWROOM"))

	// A fresh store over the same backend must see the identical
	// ordered sequence, field for field.
	reloaded := openTestStore(t, dir)
	assert.Equal(t, st.Search(""), reloaded.Search(""))
}

func TestSettingsRoundTripAndDefaults(t *testing.T) {
	dir := t.TempDir()

	st := openTestStore(t, dir)
	assert.Equal(t, defaultSettings(), st.Settings(), "defaults apply before any settings are persisted")

	updated := vehicle.Settings{
		CompanyName:        "AUTO NADOR",
		AllowedLocations:   []string{"PARC A", "PARC B"},
		StrictLocationMode: true,
		BusinessType:       vehicle.BusinessNew,
	}
	require.NoError(t, st.UpdateSettings(updated))

	reloaded := openTestStore(t, dir)
	assert.Equal(t, updated, reloaded.Settings())
}

func TestUpdateSettingsValidation(t *testing.T) {
	st := openTestStore(t, t.TempDir())

	err := st.UpdateSettings(vehicle.Settings{BusinessType: vehicle.BusinessUsed})
	assert.Error(t, err, "empty zone list rejected")

	err = st.UpdateSettings(vehicle.Settings{
		AllowedLocations: []string{"A"},
		BusinessType:     vehicle.BusinessType("XX"),
	})
	assert.Error(t, err, "unknown business type rejected")
}
