package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pthm/islet"
)

func newRenderCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render [file|directory]",
		Short: "Render the islands in HTML pages",
		Long: `Render processes HTML pages in batch: it mounts every island a page
declares, waits for lazy loads, and writes the finished document.

Given a file it renders that page; given a directory it renders every
.html file underneath it into the output directory, preserving relative
paths. Reads stdin when no argument is given.`,
		Example: `  islet render page.html
  islet render --output out.html page.html
  islet render --output dist/ pages/
  cat page.html | islet render`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), cfg, args, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file (or directory, for directory input) to write to instead of stdout")

	return cmd
}

func runRender(ctx context.Context, cfg Config, args []string, output string) error {
	sources, wasm := openSources(cfg)
	if wasm != nil {
		defer wasm.Close(context.Background())
	}

	registry := islet.NewRegistry()
	registerComponents(ctx, registry, sources)

	opts := []islet.Option{
		islet.WithRegistry(registry),
		islet.WithLogger(logger),
	}
	if len(sources) > 0 {
		opts = append(opts, islet.WithLoader(chain(sources)))
	}
	// The registry is shared; each page gets its own renderer so instance
	// tracking stays per-page.
	newRenderer := func() *islet.Renderer {
		return islet.New(opts...)
	}

	if len(args) == 1 && args[0] != "-" {
		info, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		if info.IsDir() {
			if output == "" {
				return errors.New("--output directory required when rendering a directory")
			}
			return renderDir(ctx, newRenderer, args[0], output)
		}
	}

	var src io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	var dst io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		dst = f
	}

	report, err := islet.Process(ctx, newRenderer(), src, dst)
	if err != nil {
		return err
	}

	logger.Info("page rendered",
		zap.Int("mount_points", report.Len()),
		zap.Int("mounted", report.Count(islet.StateMounted)),
		zap.Int("failed", len(report.Failed())))

	if err := report.Err(); err != nil {
		return fmt.Errorf("render completed with failures: %w", err)
	}
	return nil
}

// renderDir batch-renders every .html file under inDir into outDir,
// preserving relative paths. A failing page is logged and does not stop the
// batch; failures surface joined at the end.
func renderDir(ctx context.Context, newRenderer func() *islet.Renderer, inDir, outDir string) error {
	var pages []string
	err := fs.WalkDir(os.DirFS(inDir), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".html") {
			pages = append(pages, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	var errs []error
	rendered := 0
	for _, page := range pages {
		if err := renderFile(ctx, newRenderer(), filepath.Join(inDir, page), filepath.Join(outDir, page)); err != nil {
			logger.Warn("page failed", zap.String("page", page), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", page, err))
			continue
		}
		rendered++
	}

	logger.Info("directory rendered",
		zap.Int("pages", len(pages)),
		zap.Int("rendered", rendered),
		zap.Int("failed", len(errs)))

	if len(errs) > 0 {
		return fmt.Errorf("render completed with failures: %w", errors.Join(errs...))
	}
	return nil
}

func renderFile(ctx context.Context, r *islet.Renderer, in, out string) error {
	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(out)
	if err != nil {
		return err
	}
	defer dst.Close()

	report, err := islet.Process(ctx, r, src, dst)
	if err != nil {
		return err
	}
	return report.Err()
}
