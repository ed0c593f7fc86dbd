// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package preset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Store is a directory of named preset files (Playlist_Presets/<name>.json).
type Store struct {
	dir string
}

// NewStore opens a preset store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// List returns the preset names available in the store, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read preset store %s: %w", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads and parses the named preset. The file is validated as JSON via
// koanf before shape detection so malformed files fail with a path-carrying
// error instead of a bare decode failure.
func (s *Store) Load(name string) (*Document, error) {
	path := filepath.Join(s.dir, name+".json")

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), koanfjson.Parser()); err != nil {
		return nil, fmt.Errorf("load preset %q: %w", name, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset %q: %w", name, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", name, err)
	}
	return doc, nil
}
