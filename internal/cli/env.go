package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/rescribe/internal/commands"
	"github.com/mvp-joe/rescribe/internal/config"
	"github.com/mvp-joe/rescribe/internal/expand"
)

// appEnv is the resolved configuration a command runs against.
type appEnv struct {
	root   string
	cfg    *config.Config
	logger *log.Logger
}

// loadEnv reads config for the working directory and applies the global flags.
func loadEnv(cmd *cobra.Command) (*appEnv, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	var opts []config.LoaderOption
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}
	cfg, err := config.NewLoader(root, opts...).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if dictPath != "" {
		cfg.Dictionary.Path = dictPath
	}

	return &appEnv{
		root:   root,
		cfg:    cfg,
		logger: newLogger(cmd.ErrOrStderr(), cfg.Log.Level, verbose),
	}, nil
}

// newLogger builds the process logger. Config has already validated level.
func newLogger(w io.Writer, level string, debug bool) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	if debug {
		lvl = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "rescribe",
		Level:  lvl,
	})
}

func (e *appEnv) dictionaryPath() string {
	return config.Resolve(e.root, e.cfg.Dictionary.Path)
}

func (e *appEnv) dbPath() string {
	return config.Resolve(e.root, e.cfg.Storage.DBPath)
}

// source returns a plain file source for one-shot commands.
func (e *appEnv) source() commands.Source {
	return commands.FileSource{Path: e.dictionaryPath()}
}

func (e *appEnv) engine() (*expand.Engine, error) {
	return expand.New(expand.Options{
		MaxLines: e.cfg.Extraction.MaxLines,
		Logger:   e.logger,
	})
}

// readSource reads a file named on the command line.
func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
