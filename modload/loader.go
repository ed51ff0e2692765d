// Package modload loads islet components compiled to WebAssembly. A
// component type name resolves to <name>.wasm in the loader's filesystem;
// modules are compiled and instantiated once, then reused across renders.
//
// The module contract mirrors the usual wazero embedding shape: the module
// exports its linear memory plus malloc and free, and a render entry point
// with signature
//
//	render(input_ptr u32, input_len u32) -> u64
//
// where the return value packs the output location as (ptr << 32) | len.
// Input is the JSON-encoded prop bag; output is the HTML fragment to mount.
// A module may report a render failure by returning a JSON object with an
// "error" field instead of markup. Modules without a "render" export may
// export the function under their own component name.
package modload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/tetratelabs/wazero"
	wazeroapi "github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/pthm/islet"
)

const (
	// ExportRender is the preferred render entry point name.
	ExportRender = "render"

	defaultTimeout     = 30 * time.Second
	defaultMemoryPages = 256 // 16MB of 64KB pages
)

// Option configures a Loader.
type Option func(*Loader)

// WithTimeout caps the duration of one module call.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithMemoryLimitPages caps module memory in 64KB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(l *Loader) {
		if pages > 0 {
			l.memoryPages = pages
		}
	}
}

// WithLogger injects the loader's logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// Loader loads WASM components from a filesystem. Safe for concurrent use;
// calls into one module instance are serialized because instances share
// linear memory.
type Loader struct {
	fsys        fs.FS
	timeout     time.Duration
	memoryPages uint32
	log         *zap.Logger

	mu      sync.Mutex
	runtime wazero.Runtime
	cache   map[string]*wasmComponent
}

// New creates a loader over the given filesystem, typically os.DirFS of a
// directory of compiled modules. The wazero runtime starts lazily on the
// first load.
func New(fsys fs.FS, opts ...Option) *Loader {
	l := &Loader{
		fsys:        fsys,
		timeout:     defaultTimeout,
		memoryPages: defaultMemoryPages,
		log:         zap.NewNop(),
		cache:       make(map[string]*wasmComponent),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load compiles and instantiates <name>.wasm, or returns the cached
// instance.
func (l *Loader) Load(ctx context.Context, name string) (islet.Component, error) {
	if err := islet.CheckName(name); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.cache[name]; ok {
		return c, nil
	}

	data, err := fs.ReadFile(l.fsys, name+".wasm")
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", islet.ErrLoadFailed, name, err)
	}

	if err := l.ensureRuntimeLocked(ctx); err != nil {
		return nil, err
	}

	module, err := l.runtime.InstantiateWithConfig(ctx, data,
		wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, fmt.Errorf("%w: instantiate %q: %v", islet.ErrLoadFailed, name, err)
	}

	c, err := newWASMComponent(name, module, l.timeout)
	if err != nil {
		module.Close(ctx)
		return nil, err
	}

	l.log.Debug("wasm component loaded", zap.String("component", name))
	l.cache[name] = c
	return c, nil
}

// Names lists the component names loadable from the filesystem, sorted.
func (l *Loader) Names() ([]string, error) {
	matches, err := fs.Glob(l.fsys, "*.wasm")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m, ".wasm"))
	}
	sort.Strings(names)
	return names, nil
}

// Evict drops a cached instance and closes its module, so the next Load
// recompiles from the filesystem. No-op for unknown names.
func (l *Loader) Evict(ctx context.Context, name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.cache[name]; ok {
		delete(l.cache, name)
		c.close(ctx)
	}
}

// Close tears down the runtime and every instantiated module.
func (l *Loader) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]*wasmComponent)
	if l.runtime == nil {
		return nil
	}
	err := l.runtime.Close(ctx)
	l.runtime = nil
	return err
}

func (l *Loader) ensureRuntimeLocked(ctx context.Context) error {
	if l.runtime != nil {
		return nil
	}

	cfg := wazero.NewRuntimeConfig().
		WithMemoryLimitPages(l.memoryPages).
		WithCloseOnContextDone(true)
	runtime := wazero.NewRuntimeWithConfig(ctx, cfg)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		runtime.Close(ctx)
		return fmt.Errorf("%w: instantiate WASI: %v", islet.ErrLoadFailed, err)
	}

	l.runtime = runtime
	return nil
}

// wasmComponent adapts one instantiated module to the Component interface.
// Calls are serialized: the module owns one linear memory.
type wasmComponent struct {
	name    string
	timeout time.Duration

	mu     sync.Mutex
	module wazeroapi.Module
	memory wazeroapi.Memory
	render wazeroapi.Function
	malloc wazeroapi.Function
	free   wazeroapi.Function
}

func newWASMComponent(name string, module wazeroapi.Module, timeout time.Duration) (*wasmComponent, error) {
	c := &wasmComponent{name: name, timeout: timeout, module: module}

	c.memory = module.Memory()
	if c.memory == nil {
		return nil, fmt.Errorf("%w: module %q exports no memory", islet.ErrLoadFailed, name)
	}

	c.malloc = module.ExportedFunction("malloc")
	c.free = module.ExportedFunction("free")
	if c.malloc == nil || c.free == nil {
		return nil, fmt.Errorf("%w: module %q must export malloc and free", islet.ErrLoadFailed, name)
	}

	c.render = module.ExportedFunction(ExportRender)
	if c.render == nil {
		c.render = module.ExportedFunction(name)
	}
	if c.render == nil {
		return nil, fmt.Errorf("%w: module %q exports neither %q nor %q", islet.ErrLoadFailed, name, ExportRender, name)
	}

	return c, nil
}

// Render produces a view that calls into the module with the JSON-encoded
// prop bag. Call failures surface when the view renders and are contained
// by the renderer's boundary.
func (c *wasmComponent) Render(ctx context.Context, props islet.Props) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		input, err := json.Marshal(props)
		if err != nil {
			return fmt.Errorf("modload: marshal props for %q: %w", c.name, err)
		}

		out, err := c.call(ctx, input)
		if err != nil {
			return err
		}

		if msg := errorMessage(out); msg != "" {
			return fmt.Errorf("modload: %q reported: %s", c.name, msg)
		}

		_, err = w.Write(out)
		return err
	})
}

// call runs the module's render function with the JSON input, following the
// packed-pointer convention.
func (c *wasmComponent) call(ctx context.Context, input []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var inputPtr uint64
	if len(input) > 0 {
		results, err := c.malloc.Call(ctx, uint64(len(input)))
		if err != nil || len(results) == 0 {
			return nil, fmt.Errorf("modload: %q malloc failed: %v", c.name, err)
		}
		inputPtr = results[0]
		defer c.free.Call(ctx, inputPtr)

		if !c.memory.Write(uint32(inputPtr), input) {
			return nil, fmt.Errorf("modload: %q rejected input write at %d", c.name, inputPtr)
		}
	}

	results, err := c.render.Call(ctx, inputPtr, uint64(len(input)))
	if err != nil {
		return nil, fmt.Errorf("modload: %q render call: %w", c.name, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("modload: %q render returned no result", c.name)
	}

	outPtr, outLen := unpack(results[0])
	if outLen == 0 {
		return nil, nil
	}

	out, ok := c.memory.Read(outPtr, outLen)
	if !ok {
		return nil, fmt.Errorf("modload: %q returned out-of-range output %d+%d", c.name, outPtr, outLen)
	}

	// Copy before freeing: Read aliases module memory.
	owned := make([]byte, len(out))
	copy(owned, out)
	c.free.Call(ctx, uint64(outPtr))
	return owned, nil
}

// close releases the module once in-flight calls drain.
func (c *wasmComponent) close(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.module.Close(ctx)
}

// unpack splits a packed (ptr << 32) | len return value.
func unpack(packed uint64) (ptr, length uint32) {
	return uint32(packed >> 32), uint32(packed & 0xFFFFFFFF)
}

// errorMessage extracts the "error" field from a JSON error response, or
// empty when the output is markup.
func errorMessage(out []byte) string {
	trimmed := strings.TrimSpace(string(out))
	if !strings.HasPrefix(trimmed, "{") {
		return ""
	}
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(trimmed), &resp); err != nil {
		return ""
	}
	return resp.Error
}
