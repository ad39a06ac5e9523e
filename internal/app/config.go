package app

import (
	"time"

	"github.com/rs/zerolog"

	"aardd/internal/descriptor"
)

// Preferred-source policies.
const (
	PolicyAll    = "all"
	PolicyActive = "active"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultHistorySize   = 100
	defaultMaxAssetBytes = 256 << 10
	stateFileName        = "state.db"
)

// Config encapsulates all tunables for App construction.
type Config struct {
	Host string
	Port int
	// DataDir holds state.db. Empty disables persistence.
	DataDir string

	DictionaryDirs     []string
	DictionaryPatterns []string
	Watch              bool
	WatchDebounce      time.Duration
	// ScanProgress, if set, is called for every file discovery probes.
	ScanProgress func(path string)

	LookupLimit    int
	PreferredLimit int
	PageSize       int
	// PreferredPolicy is PolicyAll (default) or PolicyActive.
	PreferredPolicy string
	Workers         int
	HistorySize     int

	// UserStyle is an optional script file served to content pages.
	UserStyle     string
	MaxAssetBytes int64

	// Opener opens dictionary files; nil selects dict.OpenFile.
	Opener descriptor.Opener
	// Intn overrides the bind fallback's random source.
	Intn   func(n int) int
	Events EventPublisher
	Logger zerolog.Logger
}
