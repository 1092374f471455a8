package service

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishajha1234/mgnrega-backend/datagov"
	"github.com/nishajha1234/mgnrega-backend/models"
)

func TestStateSeries(t *testing.T) {
	var calls int32
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		year := r.URL.Query().Get("filters[fin_year]")
		assert.Equal(t, "BIHAR", r.URL.Query().Get("filters[state_name]"))
		if year == "2022-2023" {
			// No rows for the older year; it should be skipped, not fatal.
			w.Write(recordsBody(t))
			return
		}
		w.Write(recordsBody(t,
			models.Payload{
				"month": "Dec", "Total_Exp": "100.5",
				"SC_persondays": "10", "ST_persondays": "20",
				"Women_Persondays": "30", "Persondays_of_Central_Liability_so_far": "40",
			},
			models.Payload{"Total_Exp": "7"},
		))
	})

	data, err := svc.StateSeries(context.Background(), "BIHAR", []string{"2022-2023", "2024-2025"})
	require.NoError(t, err)
	require.Len(t, data, 1, "empty years are skipped")

	points := data["2024-2025"]
	require.Len(t, points, 2)
	assert.Equal(t, "Dec", points[0].Month)
	assert.Equal(t, 100.5, points[0].Expenditure)
	assert.Equal(t, float64(100), points[0].Persondays)
	assert.Equal(t, "Unknown", points[1].Month)

	// Second identical request is served from the TTL cache.
	_, err = svc.StateSeries(context.Background(), "BIHAR", []string{"2022-2023", "2024-2025"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "one call per year, then cached")
}

func TestStateSeriesAllYearsEmpty(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(recordsBody(t))
	})

	_, err := svc.StateSeries(context.Background(), "BIHAR", []string{"2020-2021"})
	assert.ErrorIs(t, err, datagov.ErrNoData)
}

func TestStateSeriesValidation(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("remote must not be called")
	})

	_, err := svc.StateSeries(context.Background(), "", []string{"2024-2025"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.StateSeries(context.Background(), "BIHAR", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStateSeriesRemoteDown(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := svc.StateSeries(context.Background(), "BIHAR", []string{"2024-2025"})
	assert.ErrorIs(t, err, datagov.ErrRemoteUnavailable)
}

func TestAvailability(t *testing.T) {
	var calls int32
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write(recordsBody(t,
			models.Payload{"state_name": "BIHAR", "fin_year": "2023-2024"},
			models.Payload{"state_name": "ASSAM", "fin_year": "2024-2025"},
			models.Payload{"state_name": " BIHAR ", "fin_year": "2022-2023"},
			models.Payload{"state_name": "", "fin_year": ""},
		))
	})

	av, err := svc.Availability(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ASSAM", "BIHAR"}, av.States)
	assert.Equal(t, []string{"2024-2025", "2023-2024", "2022-2023"}, av.Years)

	// Cached on the second call.
	_, err = svc.Availability(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAvailabilityEmptySample(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(recordsBody(t))
	})

	av, err := svc.Availability(context.Background())
	require.NoError(t, err)
	assert.Empty(t, av.States)
	assert.Empty(t, av.Years)
	assert.NotNil(t, av.States)
	assert.NotNil(t, av.Years)
}
