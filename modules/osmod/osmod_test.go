package osmod

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hazel-lang/hazel"
)

func call(t *testing.T, m *hazel.Module, name string, args ...hazel.Value) hazel.Value {
	t.Helper()
	v, fail := m.Call(name, args)
	if fail != nil {
		t.Fatalf("%s(%v) failed: %v", name, args, fail)
	}
	return v
}

func TestEnvironment(t *testing.T) {
	m := Module()
	t.Setenv("HAZEL_OSMOD_TEST", "set")

	if v := call(t, m, "get_env", hazel.Str("HAZEL_OSMOD_TEST")); !hazel.Equal(v, hazel.Str("set")) {
		t.Errorf("get_env = %v, want set", v)
	}
	if v := call(t, m, "get_env", hazel.Str("HAZEL_OSMOD_ABSENT")); !hazel.Equal(v, hazel.Nil) {
		t.Errorf("get_env for an unset variable = %v, want null", v)
	}
	if v := call(t, m, "get_env", hazel.Str("HAZEL_OSMOD_ABSENT"), hazel.Str("fallback")); !hazel.Equal(v, hazel.Str("fallback")) {
		t.Errorf("get_env with default = %v, want fallback", v)
	}
	t.Setenv("HAZEL_OSMOD_SET", "")
	call(t, m, "set_env", hazel.Str("HAZEL_OSMOD_SET"), hazel.Str("written"))
	if got := os.Getenv("HAZEL_OSMOD_SET"); got != "written" {
		t.Errorf("set_env wrote %q, want written", got)
	}
}

func TestWorkingDirectory(t *testing.T) {
	m := Module()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(orig)

	dir := t.TempDir()
	call(t, m, "change_dir", hazel.Str(dir))
	got := call(t, m, "get_cwd")
	resolved, _ := filepath.EvalSymlinks(dir)
	if s, ok := got.(hazel.Str); !ok || (string(s) != dir && string(s) != resolved) {
		t.Errorf("get_cwd = %v, want %s", got, dir)
	}
	_, fail := m.Call("change_dir", []hazel.Value{hazel.Str(filepath.Join(dir, "absent"))})
	if fail == nil || fail.Kind != hazel.IOFailure {
		t.Errorf("change_dir to a missing directory = %v, want IO failure", fail)
	}
}

func TestPlatformInfo(t *testing.T) {
	m := Module()
	if v := call(t, m, "get_version"); !hazel.Equal(v, hazel.Str(hazel.Version)) {
		t.Errorf("get_version = %v, want %s", v, hazel.Version)
	}
	plat, ok := call(t, m, "get_platform").(hazel.Str)
	if !ok || plat == "" {
		t.Errorf("get_platform = %v, want a name", plat)
	}
	if runtime.GOOS == "linux" && plat != "Linux" {
		t.Errorf("get_platform = %v, want Linux", plat)
	}
	n, ok := call(t, m, "cpu_count").(hazel.Int)
	if !ok || n < 1 {
		t.Errorf("cpu_count = %v, want at least 1", n)
	}
}

func TestExecute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell syntax differs on windows")
	}
	m := Module()
	v := call(t, m, "execute", hazel.Str("echo hello"))
	d, ok := v.(*hazel.Dict)
	if !ok {
		t.Fatalf("execute = %T, want dict", v)
	}
	if code, _ := d.Get("returncode"); !hazel.Equal(code, hazel.Int(0)) {
		t.Errorf("returncode = %v, want 0", code)
	}
	if out, _ := d.Get("stdout"); !hazel.Equal(out, hazel.Str("hello\n")) {
		t.Errorf("stdout = %v, want hello", out)
	}
	v = call(t, m, "execute", hazel.Str("exit 3"))
	d = v.(*hazel.Dict)
	if code, _ := d.Get("returncode"); !hazel.Equal(code, hazel.Int(3)) {
		t.Errorf("returncode = %v, want 3", code)
	}
}

func TestPathHelpers(t *testing.T) {
	m := Module()
	cases := map[string]struct {
		name string
		args []hazel.Value
		want hazel.Value
	}{
		"join":    {"path_join", []hazel.Value{hazel.Str("a"), hazel.Str("b"), hazel.Str("c.txt")}, hazel.Str(filepath.Join("a", "b", "c.txt"))},
		"dir":     {"path_dir", []hazel.Value{hazel.Str("a/b/c.txt")}, hazel.Str(filepath.Dir("a/b/c.txt"))},
		"base":    {"path_base", []hazel.Value{hazel.Str("a/b/c.txt")}, hazel.Str("c.txt")},
		"ext":     {"path_ext", []hazel.Value{hazel.Str("archive.tar.gz")}, hazel.Str(".gz")},
		"extNone": {"path_ext", []hazel.Value{hazel.Str("README")}, hazel.Str("")},
		"norm":    {"path_norm", []hazel.Value{hazel.Str("a//b/../c")}, hazel.Str(filepath.Clean("a//b/../c"))},
		"lineSep": {"get_line_sep", nil, hazel.Str("\n")},
		"pathSep": {"get_path_sep", nil, hazel.Str(string(os.PathSeparator))},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if name == "lineSep" && runtime.GOOS == "windows" {
				t.Skip("line separator differs on windows")
			}
			if v := call(t, m, c.name, c.args...); !hazel.Equal(v, c.want) {
				t.Errorf("%s = %v, want %v", c.name, v, c.want)
			}
		})
	}
	abs := call(t, m, "path_abs", hazel.Str("rel"))
	if s, ok := abs.(hazel.Str); !ok || !filepath.IsAbs(string(s)) {
		t.Errorf("path_abs = %v, want an absolute path", abs)
	}
}

func TestOSFailures(t *testing.T) {
	m := Module()
	cases := map[string]struct {
		name string
		args []hazel.Value
		kind hazel.FailKind
	}{
		"envNonString":  {"get_env", []hazel.Value{hazel.Int(1)}, hazel.TypeFailure},
		"joinEmpty":     {"path_join", nil, hazel.ValueFailure},
		"joinNonString": {"path_join", []hazel.Value{hazel.Int(1)}, hazel.TypeFailure},
		"exitNonInt":    {"exit", []hazel.Value{hazel.Str("no")}, hazel.TypeFailure},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, fail := m.Call(c.name, c.args)
			if fail == nil || fail.Kind != c.kind {
				t.Errorf("%s failure = %v, want kind %v", c.name, fail, c.kind)
			}
		})
	}
}
