// Package textmod provides the string standard library module. Case
// mapping and normalization are Unicode aware.
package textmod

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/hazel-lang/hazel"
)

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
	titleCaser = cases.Title(language.Und)
)

func str(name string, v hazel.Value) (string, *hazel.Failure) {
	if s, ok := v.(hazel.Str); ok {
		return string(s), nil
	}
	return "", hazel.NewFailuref(hazel.TypeFailure, 0, 0, "%s() requires string, got %s", name, v.TypeName())
}

func integer(name string, v hazel.Value) (int, *hazel.Failure) {
	if n, ok := v.(hazel.Int); ok {
		return int(n), nil
	}
	return 0, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "%s() requires int, got %s", name, v.TypeName())
}

// strFunc registers a one-argument string transform.
func strFunc(m *hazel.Module, name, doc string, fn func(string) hazel.Value) {
	m.RegisterFunc(name, 1, doc, func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, fail := str(name, args[0])
		if fail != nil {
			return nil, fail
		}
		return fn(s), nil
	})
}

// strStrFunc registers a two-string-argument function.
func strStrFunc(m *hazel.Module, name, doc string, fn func(a, b string) hazel.Value) {
	m.RegisterFunc(name, 2, doc, func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		a, fail := str(name, args[0])
		if fail != nil {
			return nil, fail
		}
		b, fail := str(name, args[1])
		if fail != nil {
			return nil, fail
		}
		return fn(a, b), nil
	})
}

// Module builds the string module.
func Module() *hazel.Module {
	m := hazel.NewModule("string")

	strFunc(m, "length", "string length in characters", func(s string) hazel.Value {
		return hazel.Int(utf8.RuneCountInString(s))
	})
	m.RegisterFunc("split", -1, "split by delimiter, or by whitespace runs", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 1 || len(args) > 2 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "split() expects 1 or 2 arguments, got %d", len(args))
		}
		s, fail := str("split", args[0])
		if fail != nil {
			return nil, fail
		}
		var parts []string
		if len(args) == 1 {
			parts = strings.Fields(s)
		} else {
			sep, fail := str("split", args[1])
			if fail != nil {
				return nil, fail
			}
			parts = strings.Split(s, sep)
		}
		elems := make([]hazel.Value, len(parts))
		for i, p := range parts {
			elems[i] = hazel.Str(p)
		}
		return hazel.NewArray(elems...), nil
	})
	m.RegisterFunc("join", -1, "join array elements with delimiter", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 1 || len(args) > 2 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "join() expects 1 or 2 arguments, got %d", len(args))
		}
		a, ok := args[0].(*hazel.Array)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "join() requires array, got %s", args[0].TypeName())
		}
		sep := ""
		if len(args) == 2 {
			s, fail := str("join", args[1])
			if fail != nil {
				return nil, fail
			}
			sep = s
		}
		parts := make([]string, len(a.Elems))
		for i, e := range a.Elems {
			parts[i] = hazel.AsString(e)
		}
		return hazel.Str(strings.Join(parts, sep)), nil
	})
	m.RegisterFunc("replace", -1, "replace occurrences, optionally limited", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 3 || len(args) > 4 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "replace() expects 3 or 4 arguments, got %d", len(args))
		}
		s, fail := str("replace", args[0])
		if fail != nil {
			return nil, fail
		}
		old, fail := str("replace", args[1])
		if fail != nil {
			return nil, fail
		}
		new, fail := str("replace", args[2])
		if fail != nil {
			return nil, fail
		}
		count := -1
		if len(args) == 4 {
			count, fail = integer("replace", args[3])
			if fail != nil {
				return nil, fail
			}
		}
		return hazel.Str(strings.Replace(s, old, new, count)), nil
	})
	m.RegisterFunc("trim", -1, "trim whitespace or given characters", trimFunc("trim", strings.Trim, strings.TrimSpace))
	m.RegisterFunc("trim_start", -1, "trim leading whitespace or given characters", trimFunc("trim_start", strings.TrimLeft, func(s string) string {
		return strings.TrimLeftFunc(s, unicode.IsSpace)
	}))
	m.RegisterFunc("trim_end", -1, "trim trailing whitespace or given characters", trimFunc("trim_end", strings.TrimRight, func(s string) string {
		return strings.TrimRightFunc(s, unicode.IsSpace)
	}))
	strFunc(m, "to_upper", "uppercase", func(s string) hazel.Value {
		return hazel.Str(upperCaser.String(s))
	})
	strFunc(m, "to_lower", "lowercase", func(s string) hazel.Value {
		return hazel.Str(lowerCaser.String(s))
	})
	m.RegisterFunc("substring", -1, "substring by character indices", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 2 || len(args) > 3 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "substring() expects 2 or 3 arguments, got %d", len(args))
		}
		s, fail := str("substring", args[0])
		if fail != nil {
			return nil, fail
		}
		runes := []rune(s)
		start, fail := integer("substring", args[1])
		if fail != nil {
			return nil, fail
		}
		end := len(runes)
		if len(args) == 3 {
			end, fail = integer("substring", args[2])
			if fail != nil {
				return nil, fail
			}
		}
		start = clamp(start, len(runes))
		end = clamp(end, len(runes))
		if start > end {
			start = end
		}
		return hazel.Str(string(runes[start:end])), nil
	})
	strStrFunc(m, "index_of", "first index of substring, -1 when absent", func(s, sub string) hazel.Value {
		return hazel.Int(strings.Index(s, sub))
	})
	strStrFunc(m, "last_index_of", "last index of substring, -1 when absent", func(s, sub string) hazel.Value {
		return hazel.Int(strings.LastIndex(s, sub))
	})
	strStrFunc(m, "starts_with", "prefix test", func(s, prefix string) hazel.Value {
		return hazel.Bool(strings.HasPrefix(s, prefix))
	})
	strStrFunc(m, "ends_with", "suffix test", func(s, suffix string) hazel.Value {
		return hazel.Bool(strings.HasSuffix(s, suffix))
	})
	strStrFunc(m, "contains", "substring test", func(s, sub string) hazel.Value {
		return hazel.Bool(strings.Contains(s, sub))
	})
	strFunc(m, "reverse", "reverse characters", func(s string) hazel.Value {
		runes := []rune(s)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return hazel.Str(string(runes))
	})
	m.RegisterFunc("repeat", 2, "repeat string count times", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, fail := str("repeat", args[0])
		if fail != nil {
			return nil, fail
		}
		count, fail := integer("repeat", args[1])
		if fail != nil {
			return nil, fail
		}
		if count < 0 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "repeat() requires non-negative count")
		}
		return hazel.Str(strings.Repeat(s, count)), nil
	})
	m.RegisterFunc("pad_start", -1, "left-pad to length", padFunc("pad_start", true))
	m.RegisterFunc("pad_end", -1, "right-pad to length", padFunc("pad_end", false))
	strStrFunc(m, "count", "count non-overlapping occurrences", func(s, sub string) hazel.Value {
		return hazel.Int(strings.Count(s, sub))
	})
	strFunc(m, "is_empty", "reports empty string", func(s string) hazel.Value {
		return hazel.Bool(s == "")
	})
	strFunc(m, "is_blank", "reports empty or all-whitespace string", func(s string) hazel.Value {
		return hazel.Bool(strings.TrimSpace(s) == "")
	})
	strFunc(m, "capitalize", "uppercase the first character", func(s string) hazel.Value {
		if s == "" {
			return hazel.Str("")
		}
		r, size := utf8.DecodeRuneInString(s)
		return hazel.Str(upperCaser.String(string(r)) + lowerCaser.String(s[size:]))
	})
	strFunc(m, "title_case", "title-case each word", func(s string) hazel.Value {
		return hazel.Str(titleCaser.String(s))
	})
	strFunc(m, "swap_case", "swap letter case", func(s string) hazel.Value {
		return hazel.Str(strings.Map(func(r rune) rune {
			switch {
			case unicode.IsUpper(r):
				return unicode.ToLower(r)
			case unicode.IsLower(r):
				return unicode.ToUpper(r)
			}
			return r
		}, s))
	})
	strFunc(m, "normalize", "Unicode NFC normalization", func(s string) hazel.Value {
		return hazel.Str(norm.NFC.String(s))
	})
	return m
}

func clamp(i, length int) int {
	if i < 0 {
		i += length
	}
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}

func trimFunc(name string, withCutset func(string, string) string, plain func(string) string) hazel.NativeFunc {
	return func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 1 || len(args) > 2 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "%s() expects 1 or 2 arguments, got %d", name, len(args))
		}
		s, fail := str(name, args[0])
		if fail != nil {
			return nil, fail
		}
		if len(args) == 1 {
			return hazel.Str(plain(s)), nil
		}
		cutset, fail := str(name, args[1])
		if fail != nil {
			return nil, fail
		}
		return hazel.Str(withCutset(s, cutset)), nil
	}
}

func padFunc(name string, atStart bool) hazel.NativeFunc {
	return func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 2 || len(args) > 3 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "%s() expects 2 or 3 arguments, got %d", name, len(args))
		}
		s, fail := str(name, args[0])
		if fail != nil {
			return nil, fail
		}
		length, fail := integer(name, args[1])
		if fail != nil {
			return nil, fail
		}
		pad := " "
		if len(args) == 3 {
			pad, fail = str(name, args[2])
			if fail != nil {
				return nil, fail
			}
			if pad == "" {
				return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "%s() requires non-empty pad string", name)
			}
		}
		have := utf8.RuneCountInString(s)
		if have >= length {
			return hazel.Str(s), nil
		}
		need := length - have
		padRunes := []rune(strings.Repeat(pad, need/utf8.RuneCountInString(pad)+1))[:need]
		if atStart {
			return hazel.Str(string(padRunes) + s), nil
		}
		return hazel.Str(s + string(padRunes)), nil
	}
}
