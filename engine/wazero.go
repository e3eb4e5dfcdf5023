package engine

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/handle-guard/errors"
)

// ABI names the guest exports used by a family.
// Open and Release are required. Live and Alive may be empty.
type ABI struct {
	Open    string
	Release string
	Live    string
	Alive   string
}

// DefaultABI matches the embedded guest.
var DefaultABI = ABI{
	Open:    "open",
	Release: "release",
	Live:    "live",
	Alive:   "alive",
}

// Config holds configuration for engine creation
type Config struct {
	// Guest is the foreign component binary. nil selects the embedded guest.
	Guest []byte

	// ABI overrides export names. The zero value means DefaultABI.
	ABI ABI

	// MemoryLimitPages sets the maximum memory per family in pages (64KB each).
	// 0 means the wazero default.
	MemoryLimitPages uint32
}

// Engine compiles a foreign component once and instantiates it per family.
type Engine struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	families map[string]*Family
	abi      ABI
	mu       sync.Mutex
	closed   bool
}

// New compiles the guest and validates its exports against the ABI.
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	guest := cfg.Guest
	if guest == nil {
		guest = guestModule
	}

	abi := cfg.ABI
	if abi == (ABI{}) {
		abi = DefaultABI
	}
	if abi.Open == "" || abi.Release == "" {
		return nil, errors.InvalidInput(errors.PhaseLoad, "ABI requires open and release export names")
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	compiled, err := rt.CompileModule(ctx, guest)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Load("compile guest", err)
	}

	if err := abi.check(compiled.ExportedFunctions()); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	return &Engine{
		runtime:  rt,
		compiled: compiled,
		families: make(map[string]*Family),
		abi:      abi,
	}, nil
}

// ABI returns the export names in use.
func (e *Engine) ABI() ABI {
	return e.abi
}

// Family returns the instance backing name, instantiating it on first use.
func (e *Engine) Family(ctx context.Context, name string) (*Family, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseLoad, "family name is empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, errors.Closed(errors.PhaseLoad, name)
	}
	if f, ok := e.families[name]; ok {
		return f, nil
	}

	mod, err := e.runtime.InstantiateModule(ctx, e.compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, errors.Instantiation(name, err)
	}

	f := &Family{
		name:    name,
		abi:     e.abi,
		module:  mod,
		open:    mod.ExportedFunction(e.abi.Open),
		release: mod.ExportedFunction(e.abi.Release),
	}
	if e.abi.Live != "" {
		f.live = mod.ExportedFunction(e.abi.Live)
	}
	if e.abi.Alive != "" {
		f.alive = mod.ExportedFunction(e.abi.Alive)
	}
	e.families[name] = f

	Logger().Debug("family instantiated", zap.String("family", name))
	return f, nil
}

// Families returns the instantiated family names in sorted order.
func (e *Engine) Families() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	names := make([]string, 0, len(e.families))
	for name := range e.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every family and the underlying runtime.
// Releases that arrive afterwards are ignored.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	families := make([]*Family, 0, len(e.families))
	for _, f := range e.families {
		families = append(families, f)
	}
	e.mu.Unlock()

	for _, f := range families {
		_ = f.Close(ctx)
	}
	return e.runtime.Close(ctx)
}

var (
	sigNullaryI32 = signature{results: []api.ValueType{api.ValueTypeI32}}
	sigUnaryVoid  = signature{params: []api.ValueType{api.ValueTypeI32}}
	sigUnaryI32   = signature{params: []api.ValueType{api.ValueTypeI32}, results: []api.ValueType{api.ValueTypeI32}}
)

type signature struct {
	params  []api.ValueType
	results []api.ValueType
}

func (s signature) matches(def api.FunctionDefinition) bool {
	return slices.Equal(def.ParamTypes(), s.params) && slices.Equal(def.ResultTypes(), s.results)
}

// check verifies that every named export exists with the expected signature.
func (a ABI) check(exports map[string]api.FunctionDefinition) error {
	required := []struct {
		name string
		sig  signature
	}{
		{a.Open, sigNullaryI32},
		{a.Release, sigUnaryVoid},
		{a.Live, sigNullaryI32},
		{a.Alive, sigUnaryI32},
	}

	for _, r := range required {
		if r.name == "" {
			continue
		}
		def, ok := exports[r.name]
		if !ok {
			return errors.NotFound(errors.PhaseLoad, "export", r.name)
		}
		if !r.sig.matches(def) {
			return errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Detail("export %s has %d params and %d results", r.name, len(def.ParamTypes()), len(def.ResultTypes())).
				Build()
		}
	}
	return nil
}
