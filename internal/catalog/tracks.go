package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddTrack inserts a new track row. audio_file_path is unique; a
// second insert for the same path returns the existing row's id
// alongside ErrAlreadyExists so a reprocess path can act on it
// without a second round-trip.
func (s *Store) AddTrack(ctx context.Context, t TrackInfo) (int64, error) {
	if t.AudioFilePath == "" || t.Title == "" {
		return 0, fmt.Errorf("%w: title and audio_file_path are required", ErrInvalidInput)
	}
	if t.DiscNumber == 0 {
		t.DiscNumber = 1
	}

	const q = `
		INSERT INTO tracks
			(title, artist, album, album_art_path, lyrics_path, youtube_id,
			 duration_seconds, audio_file_path, track_number, total_tracks,
			 disc_number, total_discs)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id`

	var id int64
	err := s.db.QueryRowContext(ctx, q,
		t.Title, t.Artist, nullIfEmpty(t.Album), nullIfEmpty(t.AlbumArtPath), nullIfEmpty(t.LyricsPath),
		nullIfEmpty(t.YouTubeID), t.DurationSeconds, t.AudioFilePath,
		nullIfZero(t.TrackNumber), nullIfZero(t.TotalTracks), t.DiscNumber, nullIfZero(t.TotalDiscs),
	).Scan(&id)
	if err != nil {
		classified := classifyPgError(err)
		if errors.Is(classified, ErrAlreadyExists) {
			if existingID, lookupErr := s.audioPathToID(ctx, t.AudioFilePath); lookupErr == nil {
				return existingID, classified
			}
		}
		return 0, classified
	}

	s.invalidateStats()
	return id, nil
}

func (s *Store) audioPathToID(ctx context.Context, audioFilePath string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM tracks WHERE audio_file_path = $1`, audioFilePath).Scan(&id)
	return id, err
}

// DeleteTrack removes a track and, via ON DELETE CASCADE, its
// postings.
func (s *Store) DeleteTrack(ctx context.Context, id int64) error {
	path, _ := s.audioPathForID(ctx, id)

	res, err := s.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = $1`, id)
	if err != nil {
		return classifyPgError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classifyPgError(err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if path != "" {
		s.invalidateTrackCache(path)
	}
	s.invalidateStats()
	return nil
}

func (s *Store) audioPathForID(ctx context.Context, id int64) (string, error) {
	var path string
	err := s.db.QueryRowContext(ctx, `SELECT audio_file_path FROM tracks WHERE id = $1`, id).Scan(&path)
	return path, err
}

// GetTrack looks up a track by audio file path, consulting a
// read-through cache first. The cache is invalidated on delete but
// not on external updates, matching the single-writer assumption.
func (s *Store) GetTrack(ctx context.Context, audioFilePath string) (TrackInfo, error) {
	if cached, ok := s.trackCache.Load(audioFilePath); ok {
		return cached.(TrackInfo), nil
	}

	const q = `
		SELECT id, title, artist, COALESCE(album,''), COALESCE(album_art_path,''),
		       COALESCE(lyrics_path,''), COALESCE(youtube_id,''), duration_seconds,
		       audio_file_path, COALESCE(track_number,0), COALESCE(total_tracks,0),
		       disc_number, COALESCE(total_discs,0), fingerprint_count, date_added
		FROM tracks WHERE audio_file_path = $1`

	var t TrackInfo
	err := s.db.QueryRowContext(ctx, q, audioFilePath).Scan(
		&t.ID, &t.Title, &t.Artist, &t.Album, &t.AlbumArtPath, &t.LyricsPath, &t.YouTubeID,
		&t.DurationSeconds, &t.AudioFilePath, &t.TrackNumber, &t.TotalTracks,
		&t.DiscNumber, &t.TotalDiscs, &t.FingerprintCount, &t.DateAdded,
	)
	if err == sql.ErrNoRows {
		return TrackInfo{}, ErrNotFound
	}
	if err != nil {
		return TrackInfo{}, classifyPgError(err)
	}

	s.trackCache.Store(audioFilePath, t)
	return t, nil
}

// GetTrackByID is the id-keyed counterpart used by the matcher to
// resolve posting track_ids into display metadata.
func (s *Store) GetTrackByID(ctx context.Context, id int64) (TrackInfo, error) {
	const q = `
		SELECT id, title, artist, COALESCE(album,''), COALESCE(album_art_path,''),
		       COALESCE(lyrics_path,''), COALESCE(youtube_id,''), duration_seconds,
		       audio_file_path, COALESCE(track_number,0), COALESCE(total_tracks,0),
		       disc_number, COALESCE(total_discs,0), fingerprint_count, date_added
		FROM tracks WHERE id = $1`

	var t TrackInfo
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.Title, &t.Artist, &t.Album, &t.AlbumArtPath, &t.LyricsPath, &t.YouTubeID,
		&t.DurationSeconds, &t.AudioFilePath, &t.TrackNumber, &t.TotalTracks,
		&t.DiscNumber, &t.TotalDiscs, &t.FingerprintCount, &t.DateAdded,
	)
	if err == sql.ErrNoRows {
		return TrackInfo{}, ErrNotFound
	}
	if err != nil {
		return TrackInfo{}, classifyPgError(err)
	}
	return t, nil
}

// TrackExistsAtPath is a lightweight existence check the ingestion
// coordinator uses before deciding to skip or reprocess a file.
func (s *Store) TrackExistsAtPath(ctx context.Context, audioFilePath string) (bool, error) {
	if _, ok := s.trackCache.Load(audioFilePath); ok {
		return true, nil
	}
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tracks WHERE audio_file_path = $1)`, audioFilePath,
	).Scan(&exists)
	if err != nil {
		return false, classifyPgError(err)
	}
	return exists, nil
}

// TrackExists checks for a track by title and artist, optionally
// narrowed to an album, using idx_tracks_title_artist_album. An
// empty album does not filter on album at all, matching a catalog
// lookup where the caller doesn't know (or care about) the album.
func (s *Store) TrackExists(ctx context.Context, title, artist, album string) (bool, error) {
	q := `SELECT EXISTS(SELECT 1 FROM tracks WHERE title = $1 AND artist = $2`
	args := []any{title, artist}
	if album != "" {
		q += ` AND album = $3`
		args = append(args, album)
	}
	q += `)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&exists); err != nil {
		return false, classifyPgError(err)
	}
	return exists, nil
}

// SearchTracks performs a case-insensitive substring match over
// title, artist and album, ranking title matches ahead of artist
// matches ahead of album-only matches.
func (s *Store) SearchTracks(ctx context.Context, query string) ([]TrackInfo, error) {
	const q = `
		SELECT id, title, artist, COALESCE(album,''), COALESCE(album_art_path,''),
		       COALESCE(lyrics_path,''), COALESCE(youtube_id,''), duration_seconds,
		       audio_file_path, COALESCE(track_number,0), COALESCE(total_tracks,0),
		       disc_number, COALESCE(total_discs,0), fingerprint_count, date_added
		FROM tracks
		WHERE title ILIKE '%' || $1 || '%' OR artist ILIKE '%' || $1 || '%' OR album ILIKE '%' || $1 || '%'
		ORDER BY
			CASE
				WHEN title ILIKE '%' || $1 || '%' THEN 1
				WHEN artist ILIKE '%' || $1 || '%' THEN 2
				ELSE 3
			END`

	rows, err := s.db.QueryContext(ctx, q, query)
	if err != nil {
		return nil, classifyPgError(err)
	}
	defer rows.Close()
	return scanTracks(rows)
}

// GetAlbumTracks returns every track in an album ordered by disc
// number then track number, optionally narrowed to one artist (an
// empty artist leaves the album's tracks unfiltered).
func (s *Store) GetAlbumTracks(ctx context.Context, album, artist string) ([]TrackInfo, error) {
	q := `
		SELECT id, title, artist, COALESCE(album,''), COALESCE(album_art_path,''),
		       COALESCE(lyrics_path,''), COALESCE(youtube_id,''), duration_seconds,
		       audio_file_path, COALESCE(track_number,0), COALESCE(total_tracks,0),
		       disc_number, COALESCE(total_discs,0), fingerprint_count, date_added
		FROM tracks WHERE album = $1`
	args := []any{album}
	if artist != "" {
		q += ` AND artist = $2`
		args = append(args, artist)
	}
	q += ` ORDER BY disc_number, track_number`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, classifyPgError(err)
	}
	defer rows.Close()
	return scanTracks(rows)
}

func scanTracks(rows *sql.Rows) ([]TrackInfo, error) {
	var out []TrackInfo
	for rows.Next() {
		var t TrackInfo
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Artist, &t.Album, &t.AlbumArtPath, &t.LyricsPath, &t.YouTubeID,
			&t.DurationSeconds, &t.AudioFilePath, &t.TrackNumber, &t.TotalTracks,
			&t.DiscNumber, &t.TotalDiscs, &t.FingerprintCount, &t.DateAdded,
		); err != nil {
			return nil, classifyPgError(err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
