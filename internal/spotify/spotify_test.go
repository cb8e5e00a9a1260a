package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		typ     string
		id      string
		wantErr bool
	}{
		{"playlist url", "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc", "playlist", "37i9dQZF1DXcBWIGoYBM5M", false},
		{"localized url", "https://open.spotify.com/intl-de/album/4aawyAB9vmqN3uQ7FjRGTy", "album", "4aawyAB9vmqN3uQ7FjRGTy", false},
		{"track uri", "spotify:track:11dFghVXANMlKmJXsNCbNl", "track", "11dFghVXANMlKmJXsNCbNl", false},
		{"bad uri", "spotify:track", "", "", true},
		{"other host", "https://www.youtube.com/playlist?list=PL1", "", "", true},
		{"artist unsupported", "https://open.spotify.com/artist/0OdUWJ0sBjDrqHygGUXeCF", "", "", true},
		{"short path", "https://open.spotify.com/playlist", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, id, err := ParseID(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if typ != tt.typ || string(id) != tt.id {
				t.Errorf("ParseID = (%q, %q), want (%q, %q)", typ, id, tt.typ, tt.id)
			}
		})
	}
}

func TestIsSpotify(t *testing.T) {
	if !IsSpotify("spotify:playlist:abc") || !IsSpotify("https://open.spotify.com/playlist/abc") {
		t.Error("expected spotify references to be detected")
	}
	if IsSpotify("https://youtu.be/abc") {
		t.Error("youtube link detected as spotify")
	}
}

func TestTrackQuery(t *testing.T) {
	if got := (Track{Name: "Song", Artist: "Band"}).Query(); got != "Song Band" {
		t.Errorf("Query = %q, want %q", got, "Song Band")
	}
	if got := (Track{Name: "Song"}).Query(); got != "Song" {
		t.Errorf("Query = %q, want %q", got, "Song")
	}
}

func itemJSON(name, artist string) string {
	return fmt.Sprintf(`{"track":{"type":"track","id":"%s","name":"%s","artists":[{"name":"%s"}]}}`, name, name, artist)
}

func TestListTracksDrainsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/playlists/pl1"):
			fmt.Fprint(w, `{"id":"pl1","name":"Road Trip","external_urls":{"spotify":"https://open.spotify.com/playlist/pl1"},"tracks":{"items":[],"total":0}}`)
		case strings.HasSuffix(r.URL.Path, "/playlists/pl1/tracks"):
			if r.URL.Query().Get("offset") == "2" {
				fmt.Fprintf(w, `{"items":[%s],"total":3,"limit":2,"offset":2,"next":""}`, itemJSON("C", "Artist C"))
				return
			}
			next := server.URL + "/playlists/pl1/tracks?offset=2&limit=2"
			fmt.Fprintf(w, `{"items":[%s,%s],"total":3,"limit":2,"offset":0,"next":"%s"}`,
				itemJSON("A", "Artist A"), itemJSON("B", "Artist B"), next)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewWithHTTP(server.Client(), server.URL)
	tracks, meta, err := c.ListTracks(context.Background(), "https://open.spotify.com/playlist/pl1")
	if err != nil {
		t.Fatalf("ListTracks: %v", err)
	}
	if meta.Title != "Road Trip" {
		t.Errorf("meta.Title = %q, want Road Trip", meta.Title)
	}
	want := []Track{{"A", "Artist A"}, {"B", "Artist B"}, {"C", "Artist C"}}
	if len(tracks) != len(want) {
		t.Fatalf("got %d tracks, want %d: %+v", len(tracks), len(want), tracks)
	}
	for i := range want {
		if tracks[i] != want[i] {
			t.Errorf("tracks[%d] = %+v, want %+v", i, tracks[i], want[i])
		}
	}
}

func TestListTracksPageFailure(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/playlists/pl2"):
			fmt.Fprint(w, `{"id":"pl2","name":"Broken","tracks":{"items":[],"total":0}}`)
		case r.URL.Query().Get("offset") == "1":
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"status":500,"message":"boom"}}`)
		default:
			next := server.URL + "/playlists/pl2/tracks?offset=1"
			fmt.Fprintf(w, `{"items":[%s],"total":2,"limit":1,"offset":0,"next":"%s"}`, itemJSON("A", "X"), next)
		}
	}))
	defer server.Close()

	c := NewWithHTTP(server.Client(), server.URL)
	if _, _, err := c.ListTracks(context.Background(), "spotify:playlist:pl2"); err == nil {
		t.Fatal("expected error when a page cannot be fetched")
	}
}

func TestNewClientCredentialsRequiresCredentials(t *testing.T) {
	if _, err := NewClientCredentials("", "secret"); err == nil {
		t.Fatal("expected error without client id")
	}
}
