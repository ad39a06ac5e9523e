package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"aardd/internal/app"
	"aardd/internal/config"
)

type options struct {
	configPath string
	cfg        config.Config
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "aardd",
		Short:         "Local dictionary lookup daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "Config file (.yaml, .json or .toml)")
	f.String("host", "", "Host the content server binds (default 127.0.0.1, env AARDD_HOST)")
	f.Int("port", 0, "Preferred content server port (default 8013, env AARDD_PORT)")
	f.String("data-dir", "", "Directory holding state.db (default ~/.aardd, env AARDD_DATA_DIR)")
	f.StringSlice("dict-dir", nil, "Directory to scan for dictionaries (repeatable)")
	f.String("preferred-policy", "", "Dictionaries consulted by preferred lookups: all|active")
	f.String("log-level", "", "Log level: debug|info|warn|error")
	f.String("log-format", "", "Log format: console|json")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, opts.configPath)
		if err != nil {
			return err
		}
		opts.cfg = cfg
		l, err := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
		if err != nil {
			return err
		}
		opts.log = l
		return nil
	}

	root.AddCommand(newServeCmd(opts), newDiscoverCmd(opts), newLookupCmd(opts))
	return root
}

// loadConfig merges, in increasing precedence: defaults, the config file,
// the environment and explicitly set flags.
func loadConfig(cmd *cobra.Command, path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("dict-dir") {
		cfg.DictionaryDirs, _ = flags.GetStringSlice("dict-dir")
	}
	if flags.Changed("preferred-policy") {
		cfg.PreferredPolicy, _ = flags.GetString("preferred-policy")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "~/.aardd"
	}
	return cfg, nil
}

func newLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		if lvl, err = zerolog.ParseLevel(strings.ToLower(level)); err != nil {
			return zerolog.Nop(), fmt.Errorf("log level: %w", err)
		}
	}
	switch format {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// appConfig maps the file/flag configuration onto the App's.
func appConfig(cfg config.Config, log zerolog.Logger) (app.Config, error) {
	debounce, err := cfg.Debounce()
	if err != nil {
		return app.Config{}, err
	}
	return app.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		DataDir:            cfg.DataDir,
		DictionaryDirs:     cfg.DictionaryDirs,
		DictionaryPatterns: cfg.DictionaryPatterns,
		Watch:              cfg.Watch,
		WatchDebounce:      debounce,
		LookupLimit:        cfg.LookupLimit,
		PreferredLimit:     cfg.PreferredLimit,
		PageSize:           cfg.PageSize,
		PreferredPolicy:    cfg.PreferredPolicy,
		Workers:            cfg.Workers,
		HistorySize:        cfg.HistorySize,
		UserStyle:          cfg.UserStyle,
		MaxAssetBytes:      cfg.MaxAssetBytes,
		Logger:             log,
	}, nil
}

// splitCSV splits a comma-separated list, dropping empty items.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
