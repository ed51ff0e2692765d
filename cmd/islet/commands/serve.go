package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/pthm/islet"
	"github.com/pthm/islet/lib/dom"
	"github.com/pthm/islet/modload"
)

const reloadDelay = 500 * time.Millisecond

func newServeCommand() *cobra.Command {
	var (
		listen string
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve HTML pages with their islands rendered",
		Long: `Serve runs an HTTP server over a directory of HTML pages. Each request
parses the page, mounts every island it declares and responds with the
finished document. Components register at startup from the template and
module directories; with --watch they reload when their files change.`,
		Example: `  # Serve ./pages with components from ./components
  islet serve

  # Custom layout with live reload
  islet serve --config islet.yaml --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			if watch {
				cfg.Watch = true
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload components when files change")

	return cmd
}

func runServe(ctx context.Context, cfg Config) error {
	sources, wasm := openSources(cfg)
	if wasm != nil {
		defer wasm.Close(context.Background())
	}

	registry := islet.NewRegistry()
	n := registerComponents(ctx, registry, sources)
	logger.Info("components registered", zap.Int("count", n))

	opts := []islet.Option{
		islet.WithRegistry(registry),
		islet.WithLogger(logger),
	}
	if len(sources) > 0 {
		opts = append(opts, islet.WithLoader(chain(sources)))
	}

	var promReg *prometheus.Registry
	if cfg.Metrics.Enabled {
		promReg = prometheus.NewRegistry()
		opts = append(opts, islet.WithMetrics(islet.NewMetrics(promReg)))
	}

	if cfg.Tracing == "stdout" {
		tp, err := stdoutTracerProvider()
		if err != nil {
			return err
		}
		defer tp.Shutdown(context.Background())
		opts = append(opts, islet.WithTracerProvider(tp))
	}

	// The registry is shared; each request gets its own renderer so
	// instance tracking stays per-page.
	newRenderer := func() *islet.Renderer {
		return islet.New(opts...)
	}

	if cfg.Watch {
		if err := watchComponents(ctx, cfg, registry, sources, wasm); err != nil {
			return err
		}
	}

	mux := http.NewServeMux()
	if promReg != nil {
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(promReg, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
	}
	if cfg.Debug {
		mux.Handle("/debug/islands", debugHandler(registry, sources))
	}
	mux.Handle("/", pageHandler(cfg.Pages, newRenderer))

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving pages",
			zap.String("addr", cfg.Listen),
			zap.String("pages", cfg.Pages))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// pageHandler renders one page per request. The URL path maps to a file
// under the pages directory; "/" serves index.html.
func pageHandler(pagesDir string, newRenderer func() *islet.Renderer) http.Handler {
	fsys := os.DirFS(pagesDir)

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		name := strings.TrimPrefix(path.Clean(req.URL.Path), "/")
		if name == "" || name == "." {
			name = "index"
		}
		if !strings.HasSuffix(name, ".html") {
			name += ".html"
		}
		if !fs.ValidPath(name) {
			http.NotFound(w, req)
			return
		}

		f, err := fsys.Open(name)
		if err != nil {
			http.NotFound(w, req)
			return
		}
		defer f.Close()

		doc, err := dom.Parse(f)
		if err != nil {
			logger.Error("failed to parse page", zap.String("page", name), zap.Error(err))
			http.Error(w, "malformed page", http.StatusInternalServerError)
			return
		}

		r := newRenderer()
		report := r.RenderAll(req.Context(), doc.Root())
		r.Flush()

		out, err := doc.HTML()
		r.Detach(req.Context(), doc.Root())
		if err != nil {
			logger.Error("failed to serialize page", zap.String("page", name), zap.Error(err))
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, out)

		if err := report.Err(); err != nil {
			logger.Warn("page rendered with errors",
				zap.String("page", name),
				zap.Int("failed", len(report.Failed())),
				zap.Error(err))
		}
	})
}

// debugHandler reports what is registered and what the sources could still
// load, as JSON.
func debugHandler(registry *islet.Registry, sources []componentSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		payload := struct {
			Registered []string `json:"registered"`
			Available  []string `json:"available"`
		}{
			Registered: registry.Names(),
		}
		for _, src := range sources {
			names, err := src.Names()
			if err != nil {
				continue
			}
			payload.Available = append(payload.Available, names...)
		}
		sort.Strings(payload.Available)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Warn("failed to write debug response", zap.Error(err))
		}
	})
}

// watchComponents reloads the registry when component files change.
// Reloads are debounced; changed wasm modules are evicted so the next load
// recompiles them.
func watchComponents(ctx context.Context, cfg Config, registry *islet.Registry, sources []componentSource, wasm *modload.Loader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	for _, dir := range []string{cfg.Templates, cfg.Modules} {
		if dir == "" {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			logger.Warn("failed to watch directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	go func() {
		defer watcher.Close()
		var reload *time.Timer
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
					continue
				}
				base := filepath.Base(event.Name)
				isTemplate := strings.HasSuffix(base, ".html")
				isModule := strings.HasSuffix(base, ".wasm")
				if !isTemplate && !isModule {
					continue
				}
				logger.Debug("component file changed",
					zap.String("file", event.Name),
					zap.String("op", event.Op.String()))

				if isModule && wasm != nil {
					wasm.Evict(ctx, strings.TrimSuffix(base, ".wasm"))
				}

				if reload != nil {
					reload.Stop()
				}
				reload = time.AfterFunc(reloadDelay, func() {
					n := registerComponents(ctx, registry, sources)
					logger.Info("components reloaded", zap.Int("count", n))
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error", zap.Error(err))
			}
		}
	}()

	logger.Info("watching for component changes",
		zap.String("templates", cfg.Templates),
		zap.String("modules", cfg.Modules))
	return nil
}

func stdoutTracerProvider() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter)), nil
}
