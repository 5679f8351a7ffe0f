// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package midi

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
	"github.com/zeebo/blake3"
)

// header opens every standard MIDI file.
var header = []byte("MThd")

// ErrNotMIDI is returned by Save for data without a MIDI header.
var ErrNotMIDI = errors.New("midi: data is not a standard MIDI file")

// Library is a directory of .mid and .midi files.
type Library struct {
	Dir    string
	Logger *slog.Logger
}

// Extension reports whether name has a MIDI file extension.
func Extension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mid", ".midi":
		return true
	}
	return false
}

// Files lists the library's MIDI files, sorted. A missing directory is
// an empty library.
func (l *Library) Files() ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("midi: listing %s: %w", l.Dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && Extension(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// SearchFilenames returns the files matching query. Every
// whitespace-separated term must fuzzy-match the filename,
// case-insensitively; results are ordered by total match score, best
// first, ties by name. An empty query returns every file.
func (l *Library) SearchFilenames(query string) ([]string, error) {
	names, err := l.Files()
	if err != nil {
		return nil, err
	}
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return names, nil
	}

	type scored struct {
		name  string
		score int
	}
	var matches []scored
	slab := util.MakeSlab(100*1024, 2048)
	for _, name := range names {
		total, ok := score(name, terms, slab)
		if ok {
			matches = append(matches, scored{name: name, score: total})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].name < matches[j].name
	})

	results := make([]string, len(matches))
	for index, match := range matches {
		results[index] = match.name
	}
	return results, nil
}

var initScheme sync.Once

// score sums fzf's V2 score of every term against name, failing if any
// term does not match.
func score(name string, terms []string, slab *util.Slab) (int, bool) {
	initScheme.Do(func() { algo.Init("path") })

	chars := util.ToChars([]byte(name))
	total := 0
	for _, term := range terms {
		result, _ := algo.FuzzyMatchV2(false, true, true, &chars, []rune(term), false, slab)
		if result.Start < 0 {
			return 0, false
		}
		total += int(result.Score)
	}
	return total, true
}

// Save writes data into the library and returns the filename used. An
// empty name is replaced by a content hash, so downloading the same
// file twice stores it once. Names are reduced to a safe base name with
// a .mid extension.
func (l *Library) Save(name string, data []byte) (string, error) {
	if !bytes.HasPrefix(data, header) {
		return "", ErrNotMIDI
	}
	if strings.TrimSpace(name) == "" {
		name = ContentName(data)
	}
	filename := SanitizeName(name)
	if filename == "" {
		return "", fmt.Errorf("midi: %q is not a usable filename", name)
	}

	if err := os.MkdirAll(l.Dir, 0o750); err != nil {
		return "", fmt.Errorf("midi: creating %s: %w", l.Dir, err)
	}
	path := filepath.Join(l.Dir, filename)
	temporary := path + ".partial"
	if err := os.WriteFile(temporary, data, 0o640); err != nil {
		return "", fmt.Errorf("midi: writing %s: %w", temporary, err)
	}
	if err := os.Rename(temporary, path); err != nil {
		os.Remove(temporary)
		return "", fmt.Errorf("midi: storing %s: %w", path, err)
	}
	if l.Logger != nil {
		l.Logger.Debug("midi file saved", "path", path, "bytes", len(data))
	}
	return filename, nil
}

// ContentName derives a stable filename from the BLAKE3 digest of data.
func ContentName(data []byte) string {
	digest := blake3.Sum256(data)
	return hex.EncodeToString(digest[:8]) + ".mid"
}

// SanitizeName strips directories and unsafe characters from name and
// ensures a MIDI extension. It returns "" when nothing usable is left.
func SanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			return r
		case unicode.IsSpace(r):
			return '_'
		default:
			return -1
		}
	}, base)
	cleaned = strings.TrimLeft(cleaned, ".")
	if strings.TrimSuffix(strings.TrimSuffix(strings.ToLower(cleaned), ".midi"), ".mid") == "" {
		return ""
	}
	if !Extension(cleaned) {
		cleaned += ".mid"
	}
	return cleaned
}
