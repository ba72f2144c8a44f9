package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/leads/score-by-id", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "42", req["lead_id"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"lead_id":                  "42",
			"lead_score":               72,
			"quality":                  "hot",
			"needs_human_intervention": false,
			"interaction_details":      []string{"3 form submissions"},
			"total_interactions":       3,
			"scored_at":                "2026-08-31T10:00:00Z",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	result, err := client.Score(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, 72, result.Score)
	assert.Equal(t, "hot", result.Quality)
	assert.False(t, result.NeedsHumanIntervention)
	assert.Equal(t, []string{"3 form submissions"}, result.Details)
}

func TestScoreClampsOutOfRange(t *testing.T) {
	score := 150
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"lead_score": score, "quality": "hot"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	result, err := client.Score(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)

	score = -5
	result, err = client.Score(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
}

func TestScoreUnavailable(t *testing.T) {
	// A server that is already gone: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, time.Second)

	_, err := client.Score(context.Background(), 1)

	var scoringErr *Error
	require.True(t, errors.As(err, &scoringErr))
	assert.Equal(t, ReasonUnavailable, scoringErr.Reason)
}

func TestScoreTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, 50*time.Millisecond)

	_, err := client.Score(context.Background(), 1)

	var scoringErr *Error
	require.True(t, errors.As(err, &scoringErr))
	assert.Equal(t, ReasonTimeout, scoringErr.Reason)
}

func TestScoreProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	_, err := client.Score(context.Background(), 1)

	var scoringErr *Error
	require.True(t, errors.As(err, &scoringErr))
	assert.Equal(t, ReasonProtocol, scoringErr.Reason)
	assert.Contains(t, scoringErr.Error(), "status 500")
}

func TestScoreBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	_, err := client.Score(context.Background(), 1)

	var scoringErr *Error
	require.True(t, errors.As(err, &scoringErr))
	assert.Equal(t, ReasonProtocol, scoringErr.Reason)
}
