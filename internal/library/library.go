// Package library indexes the playable files of the music directory.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sonroyaalmerol/kumaplay/internal/utils"
)

// Track is one playable file. Name is the filename without its extension.
type Track struct {
	Path string
	Name string
}

// Library is an ordered, immutable catalog of tracks. A fresh Scan replaces
// it wholesale.
type Library struct {
	dir    string
	tracks []Track
}

// Scan lists the files in dir whose extension matches ext, case-insensitively,
// sorted by filename. An empty directory yields an empty Library.
func Scan(dir, ext string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	lib := &Library{dir: dir}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		lib.tracks = append(lib.tracks, Track{Path: path, Name: utils.DisplayName(path)})
	}
	// ReadDir already sorts, keep the order explicit
	sort.SliceStable(lib.tracks, func(i, j int) bool {
		return filepath.Base(lib.tracks[i].Path) < filepath.Base(lib.tracks[j].Path)
	})
	return lib, nil
}

func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.tracks)
}

func (l *Library) Empty() bool { return l.Len() == 0 }

// At returns the track at index i.
func (l *Library) At(i int) Track { return l.tracks[i] }

// Tracks returns a copy of the catalog.
func (l *Library) Tracks() []Track {
	if l == nil {
		return nil
	}
	return append([]Track(nil), l.tracks...)
}

func (l *Library) Dir() string {
	if l == nil {
		return ""
	}
	return l.dir
}

// New builds a Library from an explicit track list, mostly for tests.
func New(tracks ...Track) *Library {
	return &Library{tracks: append([]Track(nil), tracks...)}
}
