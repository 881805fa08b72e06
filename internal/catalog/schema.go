package catalog

import (
	"database/sql"
	"fmt"
)

// schemaVersion must be bumped whenever the table layout or the
// fingerprint hash packing changes. An index built under a different
// version fails to open rather than silently returning wrong matches.
const schemaVersion = 1

const ddl = `
CREATE TABLE IF NOT EXISTS schema_info (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tracks (
	id                 BIGSERIAL PRIMARY KEY,
	title              TEXT NOT NULL,
	artist             TEXT NOT NULL,
	album              TEXT,
	album_art_path     TEXT,
	lyrics_path        TEXT,
	youtube_id         TEXT,
	duration_seconds   INTEGER NOT NULL DEFAULT 0,
	audio_file_path    TEXT NOT NULL,
	track_number       INTEGER,
	total_tracks       INTEGER,
	disc_number        INTEGER NOT NULL DEFAULT 1,
	total_discs        INTEGER,
	fingerprint_count  INTEGER NOT NULL DEFAULT 0,
	date_added         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_tracks_audio_file_path ON tracks (audio_file_path);
CREATE INDEX IF NOT EXISTS idx_tracks_album_disc_track ON tracks (album, disc_number, track_number);
CREATE INDEX IF NOT EXISTS idx_tracks_title_artist_album ON tracks (title, artist, album);

CREATE TABLE IF NOT EXISTS postings (
	hash        BIGINT NOT NULL,
	track_id    BIGINT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
	time_offset INTEGER NOT NULL,
	PRIMARY KEY (hash, track_id, time_offset)
);

CREATE INDEX IF NOT EXISTS idx_postings_hash ON postings (hash);
CREATE INDEX IF NOT EXISTS idx_postings_track_id ON postings (track_id);
`

func ensureSchema(db *sql.DB) error {
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return checkOrSetSchemaVersion(db)
}

func checkOrSetSchemaVersion(db *sql.DB) error {
	var value string
	err := db.QueryRow(`SELECT value FROM schema_info WHERE key = 'version'`).Scan(&value)
	switch {
	case err == sql.ErrNoRows:
		_, err = db.Exec(`INSERT INTO schema_info (key, value) VALUES ('version', $1)`, fmt.Sprint(schemaVersion))
		return err
	case err != nil:
		return fmt.Errorf("reading schema version: %w", err)
	}

	var stored int
	if _, err := fmt.Sscanf(value, "%d", &stored); err != nil {
		return fmt.Errorf("%w: unreadable schema version %q", ErrCorruption, value)
	}
	if stored != schemaVersion {
		return fmt.Errorf("%w: index built under schema version %d, this binary expects %d",
			ErrLayoutMismatch, stored, schemaVersion)
	}
	return nil
}
