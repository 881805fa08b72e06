package catalog

import "time"

// TrackInfo mirrors the tracks table. Fields that the ingestion
// coordinator could not determine (album art, lyrics, disc/track
// numbers) are left at their zero value rather than guessed.
type TrackInfo struct {
	ID               int64
	Title            string
	Artist           string
	Album            string
	AlbumArtPath     string
	LyricsPath       string
	YouTubeID        string
	DurationSeconds  int
	AudioFilePath    string
	TrackNumber      int
	TotalTracks      int
	DiscNumber       int
	TotalDiscs       int
	FingerprintCount int
	DateAdded        time.Time
}

// Posting is one (hash, track, offset) row as produced by the
// fingerprint package's token stream.
type Posting struct {
	Hash       uint64
	TrackID    int64
	TimeOffset int
}

// Stats summarizes catalog size. Returned from a bounded-staleness
// cache; see stats.go.
type Stats struct {
	TotalTracks   int
	TotalPostings int64
	UniqueHashes  int64
	TotalAlbums   int
	TotalArtists  int
	DBSizeBytes   int64
}
