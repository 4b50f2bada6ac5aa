package arcgis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestService serves a canned feature service over httptest: a count
// query plus paged feature queries over the given records.
func newTestService(t *testing.T, records []map[string]any) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Contains(t, q.Get("where"), "Dublin City Council")
		w.Header().Set("Content-Type", "application/json")

		if q.Get("returnCountOnly") == "true" {
			json.NewEncoder(w).Encode(map[string]any{"count": len(records)})
			return
		}

		offset, _ := strconv.Atoi(q.Get("resultOffset"))
		size, _ := strconv.Atoi(q.Get("resultRecordCount"))
		end := min(offset+size, len(records))
		if offset > len(records) {
			offset = len(records)
		}

		features := make([]map[string]any, 0, end-offset)
		for _, rec := range records[offset:end] {
			features = append(features, map[string]any{"attributes": rec})
		}
		json.NewEncoder(w).Encode(map[string]any{"features": features})
	}))
}

func makeRawRecords(n int) []map[string]any {
	records := make([]map[string]any, n)
	for i := range records {
		records[i] = map[string]any{
			"ApplicationNumber": strconv.Itoa(1000+i) + "/24",
			"ApplicationStatus": "DECIDED",
		}
	}
	return records
}

func TestCount(t *testing.T) {
	server := newTestService(t, makeRawRecords(7))
	defer server.Close()

	client := NewClient(server.URL, 3, nil)
	count, err := client.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestFetchAll_Paginates(t *testing.T) {
	server := newTestService(t, makeRawRecords(7))
	defer server.Close()

	client := NewClient(server.URL, 3, nil)
	records, result, err := client.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, records, 7)
	assert.Equal(t, 7, result.Total)
	assert.Equal(t, 7, result.Fetched)
	assert.Equal(t, 0, result.SkippedPages)
	assert.Equal(t, "1000/24", records[0]["ApplicationNumber"])
	assert.Equal(t, "1006/24", records[6]["ApplicationNumber"])
}

func TestFetchAll_EmptyService(t *testing.T) {
	server := newTestService(t, nil)
	defer server.Close()

	client := NewClient(server.URL, 3, nil)
	_, _, err := client.FetchAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no records found")
}

func TestFetchPage_RetriesTransientFailures(t *testing.T) {
	var attempts int
	records := makeRawRecords(2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		if q.Get("returnCountOnly") == "true" {
			json.NewEncoder(w).Encode(map[string]any{"count": len(records)})
			return
		}
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		features := []map[string]any{
			{"attributes": records[0]},
			{"attributes": records[1]},
		}
		json.NewEncoder(w).Encode(map[string]any{"features": features})
	}))
	defer server.Close()

	client := NewClient(server.URL, 10, nil)
	got, result, err := client.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, got, 2)
	assert.Equal(t, 0, result.SkippedPages)
	assert.Equal(t, 2, attempts, "the failed page is retried, not skipped")
}

func TestFetchAll_EmptyPageRetried(t *testing.T) {
	var pageCalls int
	records := makeRawRecords(2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		if q.Get("returnCountOnly") == "true" {
			json.NewEncoder(w).Encode(map[string]any{"count": len(records)})
			return
		}
		pageCalls++
		if pageCalls == 1 {
			// 200 with no features: transient service hiccup.
			json.NewEncoder(w).Encode(map[string]any{"features": []any{}})
			return
		}
		features := []map[string]any{
			{"attributes": records[0]},
			{"attributes": records[1]},
		}
		json.NewEncoder(w).Encode(map[string]any{"features": features})
	}))
	defer server.Close()

	client := NewClient(server.URL, 10, nil)
	got, result, err := client.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, got, 2, "an empty page inside the walk must be retried, not accepted")
	assert.Equal(t, 0, result.SkippedPages)
	assert.Equal(t, 2, pageCalls)
}

func TestFetchAll_PersistentlyEmptyPageCounted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		if q.Get("returnCountOnly") == "true" {
			json.NewEncoder(w).Encode(map[string]any{"count": 2})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"features": []any{}})
	}))
	defer server.Close()

	client := NewClient(server.URL, 10, nil)
	got, result, err := client.FetchAll(context.Background())
	require.NoError(t, err, "a page that stays empty is skipped, not fatal")

	assert.Empty(t, got)
	assert.Equal(t, 1, result.SkippedPages)
}

func TestQuery_SurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": "Invalid query"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 10, nil)
	_, err := client.Count(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid query")
}
