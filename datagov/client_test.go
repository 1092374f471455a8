package datagov

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchBuildsQuery(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"records": [{"district_code": "0501", "Total_Exp": "15209.14"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	records, err := c.Fetch(context.Background(), Filters{
		StateName:    "BIHAR",
		DistrictCode: "0501",
		FinYear:      "2024-2025",
	}, 10000)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "0501", records[0].String("district_code"))

	assert.Equal(t, "/resource/"+resourceID, gotPath)
	assert.Equal(t, []string{"test-key"}, gotQuery["api-key"])
	assert.Equal(t, []string{"json"}, gotQuery["format"])
	assert.Equal(t, []string{"10000"}, gotQuery["limit"])
	assert.Equal(t, []string{"BIHAR"}, gotQuery["filters[state_name]"])
	assert.Equal(t, []string{"0501"}, gotQuery["filters[district_code]"])
	assert.Equal(t, []string{"2024-2025"}, gotQuery["filters[fin_year]"])
}

func TestFetchOmitsEmptyFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("filters[state_name]"))
		assert.False(t, q.Has("filters[district_code]"))
		assert.False(t, q.Has("filters[fin_year]"))
		w.Write([]byte(`{"records": [{"state_name": "BIHAR"}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k").Fetch(context.Background(), Filters{}, 1000)
	require.NoError(t, err)
}

func TestFetchEmptyResultIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"records": []}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k").Fetch(context.Background(), Filters{}, 10)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFetchNonSuccessStatusIsRemoteUnavailable(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusInternalServerError, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := NewClient(srv.URL, "k").Fetch(context.Background(), Filters{}, 10)
		assert.ErrorIs(t, err, ErrRemoteUnavailable, "status %d", status)
		srv.Close()
	}
}

func TestFetchTransportErrorIsRemoteUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := NewClient(srv.URL, "k").Fetch(context.Background(), Filters{}, 10)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestFetchMalformedBodyIsRemoteUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k").Fetch(context.Background(), Filters{}, 10)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}
