package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/commonallplayers":
			_, _ = w.Write([]byte(playersEnvelope))
		case "/leaguedashplayerstats":
			_, _ = w.Write([]byte(statsEnvelope))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	duck := openTestWarehouse(t)
	client := NewClient(srv.Client(), srv.URL, 100, discardLogger())
	service := NewService(client, NewLoader(duck), discardLogger())

	require.NoError(t, service.Run(context.Background(), "2024-25"))

	var players int64
	require.NoError(t, duck.QueryRow("SELECT COUNT(*) FROM raw.players").Scan(&players))
	assert.Equal(t, int64(2), players)

	// stats rows carry the season appended at ingest time
	var season, pts string
	require.NoError(t, duck.QueryRow(
		`SELECT "SEASON", "PTS" FROM raw.player_stats WHERE "PLAYER_ID" = '1628983'`).
		Scan(&season, &pts))
	assert.Equal(t, "2024-25", season)
	assert.Equal(t, "32.7", pts)
}

func TestServiceRunFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/leaguedashplayerstats" {
			http.Error(w, "nope", http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(playersEnvelope))
	}))
	defer srv.Close()

	duck := openTestWarehouse(t)
	client := NewClient(srv.Client(), srv.URL, 100, discardLogger())
	service := NewService(client, NewLoader(duck), discardLogger())

	err := service.Run(context.Background(), "2024-25")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch player stats")

	// nothing landed: a failed ingest leaves no raw tables behind
	var n int64
	require.NoError(t, duck.QueryRow(`
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'raw'`).Scan(&n))
	assert.Zero(t, n)
}
