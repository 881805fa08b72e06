package ingest

import "testing"

func TestDiscNumberFromPath_MatchesDiscFolder(t *testing.T) {
	cases := map[string]int{
		"/music/Artist/Album/Disc 1/01 track.wav": 1,
		"/music/Artist/Album/Disc 2/01 track.wav": 2,
		"/music/Artist/Album/CD3/01 track.wav":    3,
		"/music/Artist/Album/01 track.wav":        1,
	}
	for path, want := range cases {
		if got := discNumberFromPath(path); got != want {
			t.Errorf("discNumberFromPath(%q) = %d, want %d", path, got, want)
		}
	}
}
