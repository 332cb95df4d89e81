// Package osmod provides the os standard library module: environment
// variables, working directory, path helpers and process control.
package osmod

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hazel-lang/hazel"
)

func str(name, what string, v hazel.Value) (string, *hazel.Failure) {
	if s, ok := v.(hazel.Str); ok {
		return string(s), nil
	}
	return "", hazel.NewFailuref(hazel.TypeFailure, 0, 0, "%s() requires string %s, got %s", name, what, v.TypeName())
}

// pathFunc registers a one-argument string-to-string path helper.
func pathFunc(m *hazel.Module, name, doc string, fn func(string) string) {
	m.RegisterFunc(name, 1, doc, func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		p, fail := str(name, "path", args[0])
		if fail != nil {
			return nil, fail
		}
		return hazel.Str(fn(p)), nil
	})
}

// platformName follows the naming convention of uname: Linux, Darwin,
// Windows.
func platformName() string {
	switch runtime.GOOS {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	}
	return runtime.GOOS
}

// Module builds the os module.
func Module() *hazel.Module {
	m := hazel.NewModule("os")

	m.RegisterFunc("get_env", -1, "environment variable, with optional default", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 1 || len(args) > 2 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "get_env() expects 1 or 2 arguments, got %d", len(args))
		}
		name, fail := str("get_env", "name", args[0])
		if fail != nil {
			return nil, fail
		}
		if v, ok := os.LookupEnv(name); ok {
			return hazel.Str(v), nil
		}
		if len(args) == 2 {
			if _, fail := str("get_env", "default", args[1]); fail != nil {
				return nil, fail
			}
			return args[1], nil
		}
		return hazel.Nil, nil
	})
	m.RegisterFunc("set_env", 2, "set an environment variable", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		name, fail := str("set_env", "name", args[0])
		if fail != nil {
			return nil, fail
		}
		value, fail := str("set_env", "value", args[1])
		if fail != nil {
			return nil, fail
		}
		if err := os.Setenv(name, value); err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot set '%s': %s", name, err)
		}
		return hazel.Bool(true), nil
	})
	m.RegisterFunc("get_cwd", 0, "current working directory", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		dir, err := os.Getwd()
		if err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot read working directory: %s", err)
		}
		return hazel.Str(dir), nil
	})
	m.RegisterFunc("change_dir", 1, "change the working directory", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		p, fail := str("change_dir", "path", args[0])
		if fail != nil {
			return nil, fail
		}
		if err := os.Chdir(p); err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Directory not found: %s", p)
		}
		return hazel.Bool(true), nil
	})
	m.RegisterFunc("get_platform", 0, "operating system name", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		return hazel.Str(platformName()), nil
	})
	m.RegisterFunc("get_version", 0, "interpreter version", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		return hazel.Str(hazel.Version), nil
	})
	m.RegisterFunc("execute", 1, "run a shell command, returning returncode, stdout and stderr", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		command, fail := str("execute", "command", args[0])
		if fail != nil {
			return nil, fail
		}
		var cmd *exec.Cmd
		if runtime.GOOS == "windows" {
			cmd = exec.Command("cmd", "/C", command)
		} else {
			cmd = exec.Command("sh", "-c", command)
		}
		var stdout, stderr strings.Builder
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		code := 0
		if err := cmd.Run(); err != nil {
			exit, ok := err.(*exec.ExitError)
			if !ok {
				return nil, hazel.NewFailuref(hazel.RuntimeFailure, 0, 0, "Command execution failed: %s", err)
			}
			code = exit.ExitCode()
		}
		d := hazel.NewDict()
		d.Set("returncode", hazel.Int(code))
		d.Set("stdout", hazel.Str(stdout.String()))
		d.Set("stderr", hazel.Str(stderr.String()))
		return d, nil
	})
	m.RegisterFunc("exit", -1, "exit the process, default code 0", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) > 1 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "exit() expects at most 1 argument, got %d", len(args))
		}
		code := 0
		if len(args) == 1 {
			n, ok := args[0].(hazel.Int)
			if !ok {
				return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "exit() requires int code, got %s", args[0].TypeName())
			}
			code = int(n)
		}
		os.Exit(code)
		return hazel.Nil, nil
	})
	m.RegisterFunc("get_args", 0, "command line arguments", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		argv := os.Args[1:]
		out := make([]hazel.Value, len(argv))
		for i, a := range argv {
			out[i] = hazel.Str(a)
		}
		return hazel.NewArray(out...), nil
	})
	m.RegisterFunc("get_path_sep", 0, "path separator", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		return hazel.Str(string(os.PathSeparator)), nil
	})
	m.RegisterFunc("get_line_sep", 0, "line separator", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if runtime.GOOS == "windows" {
			return hazel.Str("\r\n"), nil
		}
		return hazel.Str("\n"), nil
	})
	m.RegisterFunc("path_join", -1, "join path components", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) == 0 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "path_join() requires at least one path")
		}
		parts := make([]string, len(args))
		for i, a := range args {
			p, fail := str("path_join", "paths", a)
			if fail != nil {
				return nil, fail
			}
			parts[i] = p
		}
		return hazel.Str(filepath.Join(parts...)), nil
	})
	m.RegisterFunc("path_abs", 1, "absolute path", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		p, fail := str("path_abs", "path", args[0])
		if fail != nil {
			return nil, fail
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot resolve '%s': %s", p, err)
		}
		return hazel.Str(abs), nil
	})
	pathFunc(m, "path_dir", "directory part of a path", filepath.Dir)
	pathFunc(m, "path_base", "file name part of a path", filepath.Base)
	pathFunc(m, "path_ext", "file extension, including the dot", filepath.Ext)
	pathFunc(m, "path_norm", "normalized path", filepath.Clean)
	m.RegisterFunc("cpu_count", 0, "number of logical CPUs", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		return hazel.Int(runtime.NumCPU()), nil
	})
	return m
}
