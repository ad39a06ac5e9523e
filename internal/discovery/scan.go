package discovery

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"aardd/internal/common/fsutil"
	"aardd/internal/dict"
)

// DefaultPatterns match dictionary files anywhere below a scanned directory.
var DefaultPatterns = []string{"**/*" + dict.FileExt}

// Found is a dictionary file located by a scan.
type Found struct {
	ID    string
	Path  string
	Label string
}

// Scanner walks dictionary directories for files matching its patterns.
type Scanner struct {
	Dirs     []string
	Patterns []string
	// Probe reads a file's dictionary metadata. Defaults to dict.ReadInfo.
	Probe func(path string) (dict.Info, error)
	// Progress, if set, is called once per probed file.
	Progress func(path string)
	Logger   zerolog.Logger
}

// Scan returns every probe-able dictionary file, ordered by path. Files
// that fail to probe are skipped. A missing directory is not an error.
func (s *Scanner) Scan(ctx context.Context) ([]Found, error) {
	patterns := s.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	probe := s.Probe
	if probe == nil {
		probe = dict.ReadInfo
	}
	log := s.Logger.With().Str("component", "discovery").Logger()

	seen := map[string]struct{}{}
	var paths []string
	for _, d := range s.Dirs {
		dir, err := fsutil.ExpandHome(d)
		if err != nil {
			return nil, err
		}
		dir, err = filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			log.Debug().Str("dir", dir).Msg("skipping missing dictionary dir")
			continue
		}
		fsys := os.DirFS(dir)
		for _, pattern := range patterns {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			ms, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, err
			}
			for _, m := range ms {
				p := filepath.Join(dir, filepath.FromSlash(m))
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				paths = append(paths, p)
			}
		}
	}
	sort.Strings(paths)

	var out []Found
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if s.Progress != nil {
			s.Progress(p)
		}
		info, err := probe(p)
		if err != nil {
			log.Warn().Str("path", p).Err(err).Msg("skipping unreadable dictionary")
			continue
		}
		label := info.Label
		if label == "" {
			label = filepath.Base(p)
		}
		out = append(out, Found{ID: info.ID, Path: p, Label: label})
	}
	return out, nil
}

// Match reports whether a path relative to a dictionary dir matches any of
// patterns (DefaultPatterns when empty).
func Match(patterns []string, rel string) bool {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	rel = filepath.ToSlash(rel)
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}
