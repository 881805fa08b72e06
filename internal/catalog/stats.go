package catalog

import (
	"context"
	"time"
)

// Stats returns a cached snapshot of catalog size, refreshing it if
// the cache is older than statsCacheTTL. Catalog-wide counts are
// expensive enough on a large postings table that recognize-path
// callers should never pay for a fresh COUNT(*) on every query.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	if !s.statsAt.IsZero() && time.Since(s.statsAt) < statsCacheTTL {
		return s.statsCached, nil
	}

	fresh, err := s.computeStats(ctx)
	if err != nil {
		return Stats{}, err
	}

	s.statsCached = fresh
	s.statsAt = time.Now()
	return fresh, nil
}

func (s *Store) computeStats(ctx context.Context) (Stats, error) {
	var st Stats

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&st.TotalTracks)
	if err != nil {
		return Stats{}, classifyPgError(err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM postings`).Scan(&st.TotalPostings)
	if err != nil {
		return Stats{}, classifyPgError(err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT hash) FROM postings`).Scan(&st.UniqueHashes)
	if err != nil {
		return Stats{}, classifyPgError(err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT album) FROM tracks WHERE album IS NOT NULL AND album <> ''`,
	).Scan(&st.TotalAlbums)
	if err != nil {
		return Stats{}, classifyPgError(err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT artist) FROM tracks`).Scan(&st.TotalArtists)
	if err != nil {
		return Stats{}, classifyPgError(err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT pg_database_size(current_database())`).Scan(&st.DBSizeBytes)
	if err != nil {
		return Stats{}, classifyPgError(err)
	}

	return st, nil
}
