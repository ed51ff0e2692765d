package commands

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/pthm/islet"
	"github.com/pthm/islet/modload"
)

// componentSource is a loader that can also enumerate what it offers.
type componentSource interface {
	islet.Loader
	Names() ([]string, error)
}

// openSources builds the component sources the config names, skipping
// directories that do not exist. The caller closes the returned wasm
// loader when present.
func openSources(cfg Config) ([]componentSource, *modload.Loader) {
	var sources []componentSource
	var wasm *modload.Loader

	if dir := cfg.Templates; dir != "" {
		if _, err := os.Stat(dir); err == nil {
			sources = append(sources, islet.NewTemplateLoader(os.DirFS(dir)))
		} else {
			logger.Warn("template directory unavailable", zap.String("dir", dir), zap.Error(err))
		}
	}
	if dir := cfg.Modules; dir != "" {
		if _, err := os.Stat(dir); err == nil {
			wasm = modload.New(os.DirFS(dir), modload.WithLogger(logger))
			sources = append(sources, wasm)
		} else {
			logger.Warn("module directory unavailable", zap.String("dir", dir), zap.Error(err))
		}
	}
	return sources, wasm
}

// registerComponents loads everything the sources offer into the registry,
// replacing existing registrations so it also serves as the reload path.
// Returns how many components registered; individual failures are logged
// and skipped.
func registerComponents(ctx context.Context, reg *islet.Registry, sources []componentSource) int {
	count := 0
	for _, src := range sources {
		names, err := src.Names()
		if err != nil {
			logger.Error("failed to list components", zap.Error(err))
			continue
		}
		for _, name := range names {
			c, err := src.Load(ctx, name)
			if err != nil {
				logger.Error("failed to load component", zap.String("component", name), zap.Error(err))
				continue
			}
			if err := reg.Replace(name, c); err != nil {
				logger.Error("failed to register component", zap.String("component", name), zap.Error(err))
				continue
			}
			count++
		}
	}
	return count
}

// chain tries each source in order and returns the first success, so lazy
// mount points can resolve against templates and wasm modules alike.
type chain []componentSource

func (c chain) Load(ctx context.Context, name string) (islet.Component, error) {
	var firstErr error
	for _, src := range c {
		comp, err := src.Load(ctx, name)
		if err == nil {
			return comp, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = fmt.Errorf("%w: %q", islet.ErrLoadFailed, name)
	}
	return nil, firstErr
}
