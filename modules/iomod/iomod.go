// Package iomod provides the io standard library module for file
// system access.
package iomod

import (
	"os"
	"sort"
	"strings"

	"github.com/hazel-lang/hazel"
)

func path(name string, v hazel.Value) (string, *hazel.Failure) {
	if s, ok := v.(hazel.Str); ok {
		return string(s), nil
	}
	return "", hazel.NewFailuref(hazel.TypeFailure, 0, 0, "%s() requires string path, got %s", name, v.TypeName())
}

// Module builds the io module.
func Module() *hazel.Module {
	m := hazel.NewModule("io")

	m.RegisterFunc("read_file", 1, "read a file as a string", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		p, fail := path("read_file", args[0])
		if fail != nil {
			return nil, fail
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot read '%s': %s", p, err)
		}
		return hazel.Str(raw), nil
	})
	m.RegisterFunc("read_lines", 1, "read a file as an array of lines", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		p, fail := path("read_lines", args[0])
		if fail != nil {
			return nil, fail
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot read '%s': %s", p, err)
		}
		lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
		elems := make([]hazel.Value, len(lines))
		for i, line := range lines {
			elems[i] = hazel.Str(strings.TrimSuffix(line, "\r"))
		}
		return hazel.NewArray(elems...), nil
	})
	m.RegisterFunc("write_file", 2, "write a string to a file", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		p, fail := path("write_file", args[0])
		if fail != nil {
			return nil, fail
		}
		content, ok := args[1].(hazel.Str)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "write_file() requires string content, got %s", args[1].TypeName())
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot write '%s': %s", p, err)
		}
		return hazel.Bool(true), nil
	})
	m.RegisterFunc("append_file", 2, "append a string to a file", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		p, fail := path("append_file", args[0])
		if fail != nil {
			return nil, fail
		}
		content, ok := args[1].(hazel.Str)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "append_file() requires string content, got %s", args[1].TypeName())
		}
		f, err := os.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot open '%s': %s", p, err)
		}
		defer f.Close()
		if _, err := f.WriteString(string(content)); err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot write '%s': %s", p, err)
		}
		return hazel.Bool(true), nil
	})
	m.RegisterFunc("file_exists", 1, "reports whether a path exists", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		p, fail := path("file_exists", args[0])
		if fail != nil {
			return nil, fail
		}
		_, err := os.Stat(p)
		return hazel.Bool(err == nil), nil
	})
	m.RegisterFunc("delete_file", 1, "delete a file", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		p, fail := path("delete_file", args[0])
		if fail != nil {
			return nil, fail
		}
		if err := os.Remove(p); err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot delete '%s': %s", p, err)
		}
		return hazel.Bool(true), nil
	})
	m.RegisterFunc("create_dir", 1, "create a directory and parents", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		p, fail := path("create_dir", args[0])
		if fail != nil {
			return nil, fail
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot create '%s': %s", p, err)
		}
		return hazel.Bool(true), nil
	})
	m.RegisterFunc("list_dir", 1, "list directory entries sorted by name", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		p, fail := path("list_dir", args[0])
		if fail != nil {
			return nil, fail
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot list '%s': %s", p, err)
		}
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		sort.Strings(names)
		out := make([]hazel.Value, len(names))
		for i, n := range names {
			out[i] = hazel.Str(n)
		}
		return hazel.NewArray(out...), nil
	})
	m.RegisterFunc("get_file_size", 1, "file size in bytes", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		p, fail := path("get_file_size", args[0])
		if fail != nil {
			return nil, fail
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot stat '%s': %s", p, err)
		}
		return hazel.Int(info.Size()), nil
	})
	m.RegisterFunc("is_file", 1, "reports whether a path is a regular file", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		p, fail := path("is_file", args[0])
		if fail != nil {
			return nil, fail
		}
		info, err := os.Stat(p)
		return hazel.Bool(err == nil && info.Mode().IsRegular()), nil
	})
	m.RegisterFunc("is_dir", 1, "reports whether a path is a directory", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		p, fail := path("is_dir", args[0])
		if fail != nil {
			return nil, fail
		}
		info, err := os.Stat(p)
		return hazel.Bool(err == nil && info.IsDir()), nil
	})
	return m
}
