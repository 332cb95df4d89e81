package hazel

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tliron/commonlog"
)

// moduleCacheSize bounds the resolver's module cache. Least recently
// used modules are evicted and reloaded on their next import.
const moduleCacheSize = 100

// scriptExt is the file extension of script modules.
const scriptExt = ".hzl"

// pluginSymbol is the symbol looked up in shared object plugins. It
// must be a *Module or a func() *Module.
const pluginSymbol = "HazelModule"

// Resolver loads modules for an evaluator: builtin registry first, then
// native Go modules registered by the host, then script files, then
// shared object plugins. Loaded modules are cached with LRU eviction,
// and in-flight loads are tracked for cycle detection.
type Resolver struct {
	builtins map[string]*Module
	natives  map[string]*Module
	cache    *lru.Cache[string, *Module]
	loading  []string
	dirs     []string
	loads    int
	log      commonlog.Logger
}

// NewResolver creates a resolver whose relative lookups start from
// baseDir.
func NewResolver(baseDir string) *Resolver {
	cache, _ := lru.New[string, *Module](moduleCacheSize)
	if baseDir == "" {
		baseDir = "."
	}
	return &Resolver{
		builtins: make(map[string]*Module),
		natives:  make(map[string]*Module),
		cache:    cache,
		dirs:     []string{baseDir},
		log:      commonlog.GetLogger("hazel.resolver"),
	}
}

// RegisterBuiltin adds a standard library module. Builtins resolve
// before anything touches the filesystem.
func (r *Resolver) RegisterBuiltin(m *Module) {
	r.builtins[m.Name] = m
}

// RegisterNative adds a host-provided Go module.
func (r *Resolver) RegisterNative(m *Module) {
	r.natives[m.Name] = m
}

// Builtins lists registered builtin module names, sorted.
func (r *Resolver) Builtins() []string {
	names := make([]string, 0, len(r.builtins))
	for name := range r.builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Loads reports how many script files this resolver has parsed. Cache
// hits do not count.
func (r *Resolver) Loads() int { return r.loads }

// currentDir is the directory of the file being loaded, for relative
// imports.
func (r *Resolver) currentDir() string { return r.dirs[len(r.dirs)-1] }

// Load resolves and loads a module by name.
func (r *Resolver) Load(name string) (*Module, *Failure) {
	for _, active := range r.loading {
		if active == name {
			return nil, &Failure{
				Kind: ImportFailure,
				Message: fmt.Sprintf("Circular import detected: '%s' is already being loaded. Import chain: %s -> %s",
					name, strings.Join(r.loading, " -> "), name),
			}
		}
	}
	if m, ok := r.cache.Get(name); ok {
		r.log.Debugf("module '%s' found in cache", name)
		return m, nil
	}
	if m, ok := r.builtins[name]; ok {
		r.log.Debugf("module '%s' loaded from builtins", name)
		r.cache.Add(name, m)
		return m, nil
	}
	if m, ok := r.natives[name]; ok {
		r.log.Debugf("module '%s' loaded from native registry", name)
		r.cache.Add(name, m)
		return m, nil
	}
	if path := r.findScriptFile(name); path != "" {
		m, fail := r.loadScript(name, path)
		if fail != nil {
			return nil, fail
		}
		r.log.Debugf("module '%s' loaded from %s", name, path)
		r.cache.Add(name, m)
		return m, nil
	}
	if path := r.findPluginFile(name); path != "" {
		m, fail := r.loadPlugin(name, path)
		if fail != nil {
			return nil, fail
		}
		r.log.Debugf("module '%s' loaded from plugin %s", name, path)
		r.cache.Add(name, m)
		return m, nil
	}
	return nil, &Failure{
		Kind: ImportFailure,
		Message: fmt.Sprintf("Module '%s' not found. Available builtin modules: [%s]. Searched paths: [%s]",
			name, strings.Join(r.Builtins(), ", "), strings.Join(r.searchDirs(), ", ")),
	}
}

// moduleBaseName extracts the binding name a module registers under
// when no alias is given: the last path or dot component.
func moduleBaseName(name string) string {
	if isFilePath(name) {
		parts := strings.Split(strings.ReplaceAll(name, `\`, "/"), "/")
		return parts[len(parts)-1]
	}
	parts := strings.Split(name, ".")
	return parts[len(parts)-1]
}

// isFilePath reports whether a module name is path shaped rather than a
// plain or dotted module name.
func isFilePath(name string) bool {
	return strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../")
}

// isDotNotation reports whether a name is a dotted package path like
// mathlib.basic.
func isDotNotation(name string) bool {
	if isFilePath(name) {
		return false
	}
	return strings.Contains(name, ".") && !strings.HasPrefix(name, ".") && !strings.HasSuffix(name, ".")
}

// searchDirs lists the directories script lookups walk: the importing
// file's directory, the working directory, then HAZEL_MODULE_PATHS.
func (r *Resolver) searchDirs() []string {
	dirs := []string{r.currentDir(), "."}
	return append(dirs, moduleSearchPaths()...)
}

// findScriptFile locates the script file for a module name, or returns
// an empty string. A name resolves as name.hzl, or as a directory
// holding init.hzl or index.hzl.
func (r *Resolver) findScriptFile(name string) string {
	if isFilePath(name) {
		base := name
		if !filepath.IsAbs(base) {
			base = filepath.Join(r.currentDir(), name)
		}
		return scriptAt(base)
	}
	rel := name
	if isDotNotation(name) {
		rel = strings.ReplaceAll(name, ".", string(filepath.Separator))
	}
	for _, dir := range r.searchDirs() {
		if path := scriptAt(filepath.Join(dir, rel)); path != "" {
			return path
		}
	}
	return ""
}

// scriptAt checks one candidate base path for a script module.
func scriptAt(base string) string {
	if file := base + scriptExt; fileExists(file) {
		return file
	}
	if info, err := os.Stat(base); err == nil && info.IsDir() {
		for _, entry := range []string{"init" + scriptExt, "index" + scriptExt} {
			if file := filepath.Join(base, entry); fileExists(file) {
				return file
			}
		}
	}
	return ""
}

func (r *Resolver) findPluginFile(name string) string {
	if isFilePath(name) {
		base := name
		if !filepath.IsAbs(base) {
			base = filepath.Join(r.currentDir(), name)
		}
		if file := base + ".so"; fileExists(file) {
			return file
		}
		return ""
	}
	rel := name
	if isDotNotation(name) {
		rel = strings.ReplaceAll(name, ".", string(filepath.Separator))
	}
	for _, dir := range r.searchDirs() {
		if file := filepath.Join(dir, rel) + ".so"; fileExists(file) {
			return file
		}
	}
	return ""
}

// loadScript parses a script file and wraps its declarations as a
// module: classes become arity-checked constructors, declared objects
// and re-exported imports become constants, functions become module
// functions. The module keeps its own evaluator alive so calls share
// state.
func (r *Resolver) loadScript(name, path string) (*Module, *Failure) {
	r.loading = append(r.loading, name)
	r.dirs = append(r.dirs, filepath.Dir(path))
	defer func() {
		r.loading = r.loading[:len(r.loading)-1]
		r.dirs = r.dirs[:len(r.dirs)-1]
	}()

	prog, err := LoadFile(path)
	if err != nil {
		return nil, &Failure{Kind: ImportFailure, Message: fmt.Sprintf("Failed to parse module '%s': %s", name, err)}
	}
	r.loads++

	ev := NewEvaluator(prog)
	ev.SetResolver(r)
	if fail := ev.runPreamble(); fail != nil {
		return nil, &Failure{Kind: ImportFailure, Message: fmt.Sprintf("Failed to load module '%s': %s", name, fail.Message)}
	}

	m := NewModule(name)
	for className, cls := range prog.Classes {
		arity := 0
		if ctor := cls.method("init"); ctor != nil {
			arity = len(ctor.Params)
		}
		cls := cls
		m.RegisterFunc(className, arity, "class constructor: "+className, func(args []Value) (Value, *Failure) {
			return ev.Instantiate(cls.Name, "instance", args)
		})
	}
	for _, decl := range prog.Objects {
		if obj, ok := ev.Global(decl.Name); ok {
			m.RegisterConst(decl.Name, obj, "object instance: "+decl.Name)
		}
	}
	for funcName, fn := range prog.Functions {
		funcName := funcName
		m.RegisterFunc(funcName, len(fn.Params), "function: "+funcName, func(args []Value) (Value, *Failure) {
			return ev.CallFunction(funcName, args)
		})
	}
	for alias, imported := range ev.imported {
		m.RegisterConst(alias, imported, "imported module: "+imported.Name)
	}
	return m, nil
}

// loadPlugin loads a compiled Go plugin exposing a HazelModule symbol.
func (r *Resolver) loadPlugin(name, path string) (*Module, *Failure) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, &Failure{Kind: ImportFailure, Message: fmt.Sprintf("Failed to open plugin '%s': %s", name, err)}
	}
	sym, err := p.Lookup(pluginSymbol)
	if err != nil {
		return nil, &Failure{Kind: ImportFailure, Message: fmt.Sprintf("Plugin '%s' does not export %s", name, pluginSymbol)}
	}
	switch sym := sym.(type) {
	case **Module:
		if *sym != nil {
			return *sym, nil
		}
	case *func() *Module:
		if m := (*sym)(); m != nil {
			return m, nil
		}
	case func() *Module:
		if m := sym(); m != nil {
			return m, nil
		}
	}
	return nil, &Failure{Kind: ImportFailure, Message: fmt.Sprintf("Plugin '%s' exports %s with unsupported type", name, pluginSymbol)}
}
