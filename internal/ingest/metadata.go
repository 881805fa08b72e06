package ingest

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// fileMetadata is what a MetadataSource (or its folder-name fallback)
// could determine about one audio file.
type fileMetadata struct {
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	TotalTracks int
	DiscNumber  int
	TotalDiscs  int
}

// MetadataSource reads track metadata out of an audio file. Tag
// parsing is an external collaborator in this system's scope, not
// part of the fingerprinting algorithm itself, so the coordinator
// depends on this narrow interface rather than a concrete tag
// library; tagMetadataSource below is the stock implementation.
type MetadataSource interface {
	ReadMetadata(path string) (fileMetadata, error)
}

// tagMetadataSource reads embedded container tags via dhowden/tag.
type tagMetadataSource struct{}

func (tagMetadataSource) ReadMetadata(path string) (fileMetadata, error) {
	var meta fileMetadata

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if m, tagErr := tag.ReadFrom(f); tagErr == nil {
			meta.Title = m.Title()
			meta.Artist = m.Artist()
			meta.Album = m.Album()
			meta.TrackNumber, meta.TotalTracks = m.Track()
			meta.DiscNumber, meta.TotalDiscs = m.Disc()
		}
	}

	if meta.Title == "" {
		base := filepath.Base(path)
		meta.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if meta.DiscNumber == 0 {
		meta.DiscNumber = discNumberFromPath(path)
	}

	return meta, nil
}

var discFolderPattern = regexp.MustCompile(`(?i)(?:disc|cd)\s*0*([0-9]+)`)

// discNumberFromPath looks for a "Disc 1" or "CD 2" style folder name
// in the file's ancestor directories when the tags don't carry a disc
// number, defaulting to 1 when nothing matches.
func discNumberFromPath(path string) int {
	dir := filepath.Dir(path)
	for dir != "." && dir != string(filepath.Separator) {
		name := filepath.Base(dir)
		if m := discFolderPattern.FindStringSubmatch(name); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return 1
}
