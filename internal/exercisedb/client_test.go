package exercisedb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchByName(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("X-RapidAPI-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"0001","name":"barbell squat","bodyPart":"upper legs","equipment":"barbell","target":"glutes","gifUrl":"https://cdn.example.com/0001.gif"},
			{"id":"0002","name":"goblet squat","bodyPart":"upper legs","equipment":"dumbbell","target":"glutes","gifUrl":"https://cdn.example.com/0002.gif"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", server.Client())
	results, err := client.SearchByName(context.Background(), "squat", 10)
	require.NoError(t, err)

	assert.Equal(t, "/exercises/name/squat", gotPath)
	assert.Equal(t, "limit=10", gotQuery)
	assert.Equal(t, "test-key", gotKey)

	require.Len(t, results, 2)
	assert.Equal(t, "0001", results[0].ExternalID)
	assert.Equal(t, "barbell squat", results[0].Name)
	assert.Equal(t, "upper legs", results[0].BodyPart)
	assert.Equal(t, "https://cdn.example.com/0002.gif", results[1].GifURL)
}

func TestSearchByNameEscapesQuery(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", server.Client())
	_, err := client.SearchByName(context.Background(), "lat pulldown", 0)
	require.NoError(t, err)
	assert.Equal(t, "/exercises/name/lat%20pulldown", gotPath)
}

func TestListByBodyPart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exercises/bodyPart/chest", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":"0003","name":"bench press","bodyPart":"chest"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", server.Client())
	results, err := client.ListByBodyPart(context.Background(), "chest", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "bench press", results[0].Name)
}

func TestFetchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/exercises/name/ratelimited":
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("rate limit exceeded"))
		default:
			_, _ = w.Write([]byte(`{"not":"an array"}`))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", server.Client())

	_, err := client.SearchByName(context.Background(), "ratelimited", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")

	_, err = client.SearchByName(context.Background(), "garbage", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
