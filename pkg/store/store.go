// Package store saves and loads tones in a directory of JSON files
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kennygrant/sanitize"
	"github.com/pkg/errors"

	"github.com/james-see/ym2151tone/pkg/converter"
	"github.com/james-see/ym2151tone/pkg/debug"
	"github.com/james-see/ym2151tone/pkg/tone"
)

// ErrNoTones is returned when the directory holds no saved tone
var ErrNoTones = errors.New("no saved tones")

const timestampLayout = "20060102-150405.000"

// Entry is one saved file
type Entry struct {
	Path    string
	Name    string
	ModTime time.Time
}

// Store reads and writes tone files under Dir
type Store struct {
	Dir string
	now func() time.Time
}

// New creates a store rooted at dir
func New(dir string) *Store {
	return &Store{Dir: dir, now: time.Now}
}

// SaveTone writes g as a tone file named <timestamp>_<description>.json and
// returns its path
func (s *Store) SaveTone(description string, g tone.Grid) (string, error) {
	if description == "" {
		description = converter.DefaultDescription
	}
	data, err := converter.NewToneFile(description, g).Marshal()
	if err != nil {
		return "", errors.Wrap(err, "encode tone file")
	}

	name := fmt.Sprintf("%s_%s.json", s.now().Format(timestampLayout), fileSlug(description))
	return s.write(name, data)
}

// SaveLog writes g as a JSON register log named <name>.json
func (s *Store) SaveLog(name string, g tone.Grid) (string, error) {
	data, err := converter.GridToJSON(g)
	if err != nil {
		return "", errors.Wrap(err, "encode register log")
	}
	return s.write(fileSlug(name)+".json", data)
}

func (s *Store) write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", errors.WithStack(err)
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.WithStack(err)
	}
	debug.Log("store", "saved %s", path)
	return path, nil
}

// Load reads any supported tone format into a grid
func (s *Store) Load(path string) (tone.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tone.Grid{}, errors.WithStack(err)
	}
	g, err := converter.Decode(data, converter.DetectFormat(path))
	if err != nil {
		return tone.Grid{}, errors.Wrapf(err, "load %s", path)
	}
	debug.Log("store", "loaded %s", path)
	return g, nil
}

// List returns the saved JSON files, newest first. Ties on modification
// time fall back to the name, which starts with the save timestamp.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), ".json") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Path:    filepath.Join(s.Dir, de.Name()),
			Name:    de.Name(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].ModTime.After(entries[j].ModTime)
		}
		return entries[i].Name > entries[j].Name
	})
	return entries, nil
}

// Newest returns the path of the most recently saved file
func (s *Store) Newest() (string, error) {
	entries, err := s.List()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", ErrNoTones
	}
	return entries[0].Path, nil
}

// LoadNewest loads the most recently saved tone and returns it with its path
func (s *Store) LoadNewest() (tone.Grid, string, error) {
	path, err := s.Newest()
	if err != nil {
		return tone.Grid{}, "", err
	}
	g, err := s.Load(path)
	if err != nil {
		return tone.Grid{}, path, err
	}
	return g, path, nil
}

// fileSlug makes a description safe for a file name
func fileSlug(description string) string {
	slug := sanitize.BaseName(strings.TrimSpace(description))
	slug = strings.Trim(slug, "-.")
	if slug == "" {
		return "tone"
	}
	return slug
}
