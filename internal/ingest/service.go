package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"nbalake/internal/db"
)

// Raw table names owned by the ingestion layer.
const (
	TablePlayers     = "players"
	TablePlayerStats = "player_stats"
)

// Service orchestrates one full raw-layer refresh: both endpoints are
// fetched concurrently, then landed sequentially.
type Service struct {
	client *Client
	loader *Loader
	logger *slog.Logger
}

// NewService creates an ingestion Service.
func NewService(client *Client, loader *Loader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, loader: loader, logger: logger}
}

// Run fetches player metadata and season statistics and replaces
// raw.players and raw.player_stats. No retries: a failed ingest is
// simply re-run after fixing the cause.
func (s *Service) Run(ctx context.Context, season string) error {
	var players, stats *ResultSet

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rs, err := s.client.AllPlayers(gctx, season)
		if err != nil {
			return fmt.Errorf("fetch players: %w", err)
		}
		players = rs
		return nil
	})
	g.Go(func() error {
		rs, err := s.client.SeasonPlayerStats(gctx, season)
		if err != nil {
			return fmt.Errorf("fetch player stats: %w", err)
		}
		stats = rs
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	// The stats endpoint does not echo the season; carry it as a column
	// so each raw stat row is self-describing.
	appendConstantColumn(stats, "SEASON", season)

	if err := s.loader.ReplaceTable(ctx, db.SchemaRaw, TablePlayers, players); err != nil {
		return err
	}
	s.logger.Info("raw table loaded", "table", TablePlayers, "rows", len(players.Rows))

	if err := s.loader.ReplaceTable(ctx, db.SchemaRaw, TablePlayerStats, stats); err != nil {
		return err
	}
	s.logger.Info("raw table loaded", "table", TablePlayerStats, "rows", len(stats.Rows))

	return nil
}

func appendConstantColumn(rs *ResultSet, header, value string) {
	rs.Headers = append(rs.Headers, header)
	for i := range rs.Rows {
		rs.Rows[i] = append(rs.Rows[i], value)
	}
}
