//
// Copyright 2026 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Command modelfetch makes model files available in a local store,
// downloading the ones that are missing or too small.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo"

	"go.bug.st/modelfetch"
	"go.bug.st/modelfetch/internal/config"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitFetchFailed  = 1
	ExitInvalidArgs  = 2
	ExitModelMissing = 3
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := gnuflag.NewFlagSet("modelfetch", gnuflag.ContinueOnError)
	fs.SetOutput(stderr)

	configFile := fs.String("config", "", "YAML manifest listing the models")
	root := fs.String("root", "", "storage root directory (default: user cache dir)")
	category := fs.String("category", "", "model category: llm, whisper or tts")
	url := fs.String("url", "", "download URL of the model")
	name := fs.String("name", "", "file name of the model inside the category directory")
	minSize := fs.String("min-size", "0", "minimum valid size of the model, e.g. 100MiB")
	check := fs.Bool("check", false, "only report whether the models are present")
	quiet := fs.Bool("quiet", false, "do not print download progress")
	logLevel := fs.String("log-level", "", "logging configuration, e.g. modelfetch=DEBUG")

	fs.Usage = func() {
		fmt.Fprintln(stderr, `Usage: modelfetch [options]

Download the models listed in --config, or the single model described by
--category, --url and --name, unless a valid copy is already in the store.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(true, args); err != nil {
		return ExitInvalidArgs
	}

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.LoadFromFile(*configFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
		cfg = loaded
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	override := config.Config{Root: *root, LogLevel: *logLevel}
	if *category != "" || *url != "" || *name != "" {
		m, err := flagModel(*category, *url, *name, *minSize)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
		override.Models = []config.Model{m}
	}
	cfg = cfg.Merge(override)

	if cfg.Root == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			fmt.Fprintf(stderr, "Error: --root is required: %v\n", err)
			return ExitInvalidArgs
		}
		cfg.Root = filepath.Join(cache, "modelfetch")
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	if len(cfg.Models) == 0 {
		fmt.Fprintln(stderr, "Error: no models to fetch: use --config or --category, --url and --name")
		fs.Usage()
		return ExitInvalidArgs
	}
	if err := setupLogging(cfg.LogLevel, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	store := modelfetch.NewStoreWithConfig(cfg.Root, cfg.Transfer())
	if *check {
		return checkModels(store, cfg.Models, stdout)
	}
	return fetchModels(ctx, store, cfg.Models, stdout, stderr, *quiet)
}

func flagModel(category, url, name, minSize string) (config.Model, error) {
	c, err := modelfetch.ParseCategory(category)
	if err != nil {
		return config.Model{}, errors.Trace(err)
	}
	size, err := config.ParseSize(minSize)
	if err != nil {
		return config.Model{}, errors.Annotate(err, "invalid --min-size")
	}
	return config.Model{Category: c, URL: url, File: name, MinSize: size}, nil
}

// setupLogging applies the logging configuration and sends log output to
// stderr, so it interleaves with the progress lines.
func setupLogging(spec string, stderr io.Writer) error {
	if err := loggo.ConfigureLoggers(spec); err != nil {
		return errors.Annotate(err, "invalid log level")
	}
	_, err := loggo.ReplaceDefaultWriter(loggo.NewSimpleWriter(stderr, loggo.DefaultFormatter))
	return errors.Trace(err)
}

func checkModels(store *modelfetch.Store, models []config.Model, stdout io.Writer) int {
	exit := ExitSuccess
	for _, m := range models {
		entry, ok, err := store.Lookup(m.Category, m.File, m.MinSize)
		switch {
		case err != nil:
			fmt.Fprintf(stdout, "%s/%s: error: %v\n", m.Category, m.File, err)
			exit = ExitFetchFailed
		case ok:
			fmt.Fprintf(stdout, "%s/%s: present (%s)\n", m.Category, m.File, humanize.IBytes(uint64(entry.Size)))
		default:
			if entry.Exists {
				fmt.Fprintf(stdout, "%s/%s: too small (%s)\n", m.Category, m.File, humanize.IBytes(uint64(entry.Size)))
			} else {
				fmt.Fprintf(stdout, "%s/%s: missing\n", m.Category, m.File)
			}
			if exit == ExitSuccess {
				exit = ExitModelMissing
			}
		}
	}
	return exit
}

func fetchModels(ctx context.Context, store *modelfetch.Store, models []config.Model, stdout, stderr io.Writer, quiet bool) int {
	for _, m := range models {
		label := fmt.Sprintf("%s/%s", m.Category, m.File)
		var progress modelfetch.ProgressFunc
		if !quiet {
			progress = func(percent int) {
				fmt.Fprintf(stderr, "\r[modelfetch] %s: %3d%%", label, percent)
				if percent == 100 {
					fmt.Fprintln(stderr)
				}
			}
		}

		path, err := store.ResolveOrFetchWithContext(ctx, m.Request(progress))
		if err != nil {
			fmt.Fprintf(stderr, "\nError: %s: %v\n", label, err)
			return ExitFetchFailed
		}
		fmt.Fprintln(stdout, path)
	}
	return ExitSuccess
}
