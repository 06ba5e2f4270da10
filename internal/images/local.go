package images

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LoadIdentifiers collects image identifiers from a list of paths. A
// directory contributes the paths of the regular files in it; a file
// contributes one identifier per non-empty line, skipping lines starting with
// '#'. Duplicates are dropped, first occurrence wins.
func LoadIdentifiers(paths []string) ([]string, error) {
	var ids []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access path %s: %w", path, err)
		}

		if info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read dir %s: %w", path, err)
			}
			for _, entry := range entries {
				if entry.Type().IsRegular() {
					add(filepath.Join(path, entry.Name()))
				}
			}
			continue
		}

		lines, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			add(l)
		}
	}

	return ids, nil
}

func loadFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan file %s: %w", path, err)
	}
	return lines, nil
}

// LocalSource serves identifiers listed on disk and defers to another
// Source when the paths cannot supply enough of them.
type LocalSource struct {
	paths    []string
	fallback Source
	log      *slog.Logger
}

// NewLocalSource returns a Source reading paths, falling back to fallback.
func NewLocalSource(paths []string, fallback Source, logger *slog.Logger) *LocalSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalSource{paths: paths, fallback: fallback, log: logger.With("component", "images")}
}

// Images implements Source. The paths are re-read on every call so edits
// show up on the next round.
func (s *LocalSource) Images(ctx context.Context, count int) []string {
	ids, err := LoadIdentifiers(s.paths)
	if err != nil {
		s.log.Warn("local images unavailable", "error", err)
		return s.fallback.Images(ctx, count)
	}
	if len(ids) < count {
		s.log.Warn("not enough local images", "have", len(ids), "want", count)
		return s.fallback.Images(ctx, count)
	}
	return ids[:count]
}
