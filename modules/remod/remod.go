// Package remod provides the re standard library module. Patterns use
// RE2 syntax; match offsets count runes, not bytes.
package remod

import (
	"regexp"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hazel-lang/hazel"
)

// patternCacheSize bounds the compiled pattern cache.
const patternCacheSize = 128

var patternCache *lru.Cache[string, *regexp.Regexp]

func init() {
	patternCache, _ = lru.New[string, *regexp.Regexp](patternCacheSize)
}

// namedPatterns are the validation patterns exposed as PATTERN_*
// constants and accepted by validate().
var namedPatterns = []struct{ name, pattern string }{
	{"email", `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`},
	{"url", `^https?://(?:[-\w.]|(?:%[\da-fA-F]{2}))+`},
	{"ip", `^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`},
	{"chinese", `[\x{4e00}-\x{9fa5}]`},
	{"english", `[a-zA-Z]`},
	{"number", `\d+`},
	{"whitespace", `\s+`},
	{"word", `\w+`},
}

func str(name, what string, v hazel.Value) (string, *hazel.Failure) {
	if s, ok := v.(hazel.Str); ok {
		return string(s), nil
	}
	return "", hazel.NewFailuref(hazel.TypeFailure, 0, 0, "%s() requires string %s, got %s", name, what, v.TypeName())
}

// flagPrefix converts a flag string such as "im" to an inline RE2 flag
// group.
func flagPrefix(name, flags string) (string, *hazel.Failure) {
	if flags == "" {
		return "", nil
	}
	for _, c := range strings.ToLower(flags) {
		switch c {
		case 'i', 'm', 's':
		default:
			return "", hazel.NewFailuref(hazel.ValueFailure, 0, 0, "%s() unknown flag: '%c'. Valid flags: i, m, s", name, c)
		}
	}
	return "(?" + strings.ToLower(flags) + ")", nil
}

// optionalFlags reads the trailing optional flags argument.
func optionalFlags(name string, args []hazel.Value, at int) (string, *hazel.Failure) {
	if len(args) <= at {
		return "", nil
	}
	return str(name, "flags", args[at])
}

// compile builds a pattern with inline flags, serving repeats from the
// cache.
func compile(name, pattern, flags string) (*regexp.Regexp, *hazel.Failure) {
	prefix, fail := flagPrefix(name, flags)
	if fail != nil {
		return nil, fail
	}
	src := prefix + pattern
	if re, ok := patternCache.Get(src); ok {
		return re, nil
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Invalid regex pattern: %s", err)
	}
	patternCache.Add(src, re)
	return re, nil
}

func runeOffset(s string, byteOffset int) int {
	return utf8.RuneCountInString(s[:byteOffset])
}

// matchDict packages one submatch index set as a match object: group,
// groups, start, end and span.
func matchDict(re *regexp.Regexp, s string, loc []int) *hazel.Dict {
	groups := make([]hazel.Value, re.NumSubexp())
	for i := 1; i <= re.NumSubexp(); i++ {
		if loc[2*i] < 0 {
			groups[i-1] = hazel.Nil
		} else {
			groups[i-1] = hazel.Str(s[loc[2*i]:loc[2*i+1]])
		}
	}
	start := runeOffset(s, loc[0])
	end := runeOffset(s, loc[1])
	d := hazel.NewDict()
	d.Set("group", hazel.Str(s[loc[0]:loc[1]]))
	d.Set("groups", hazel.NewArray(groups...))
	d.Set("start", hazel.Int(start))
	d.Set("end", hazel.Int(end))
	d.Set("span", hazel.NewArray(hazel.Int(start), hazel.Int(end)))
	return d
}

// patternArgs reads the common (pattern, string, flags?) argument shape.
func patternArgs(name string, args []hazel.Value) (*regexp.Regexp, string, *hazel.Failure) {
	if len(args) < 2 || len(args) > 3 {
		return nil, "", hazel.NewFailuref(hazel.ValueFailure, 0, 0, "%s() expects 2 or 3 arguments, got %d", name, len(args))
	}
	pattern, fail := str(name, "pattern", args[0])
	if fail != nil {
		return nil, "", fail
	}
	subject, fail := str(name, "string", args[1])
	if fail != nil {
		return nil, "", fail
	}
	flags, fail := optionalFlags(name, args, 2)
	if fail != nil {
		return nil, "", fail
	}
	re, fail := compile(name, pattern, flags)
	if fail != nil {
		return nil, "", fail
	}
	return re, subject, nil
}

// anchored wraps a pattern so it only matches at the start of the
// subject.
func anchored(pattern string) string {
	return `\A(?:` + pattern + `)`
}

// expandRepl rewrites backslash group references such as \1 to the
// ${1} form ExpandString understands, and protects literal dollars.
func expandRepl(repl string) string {
	var b strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		if c == '$' {
			b.WriteString("$$")
			continue
		}
		if c == '\\' && i+1 < len(repl) {
			next := repl[i+1]
			if next >= '0' && next <= '9' {
				j := i + 1
				for j < len(repl) && repl[j] >= '0' && repl[j] <= '9' {
					j++
				}
				b.WriteString("${" + repl[i+1:j] + "}")
				i = j - 1
				continue
			}
			if next == '\\' {
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// replaceAt substitutes up to count matches; count <= 0 replaces all.
func replaceAt(re *regexp.Regexp, s, repl string, count int) string {
	if count <= 0 {
		count = -1
	}
	matches := re.FindAllStringSubmatchIndex(s, count)
	if matches == nil {
		return s
	}
	template := expandRepl(repl)
	var out []byte
	last := 0
	for _, loc := range matches {
		out = append(out, s[last:loc[0]]...)
		out = re.ExpandString(out, template, s, loc)
		last = loc[1]
	}
	return string(append(out, s[last:]...))
}

// Module builds the re module.
func Module() *hazel.Module {
	m := hazel.NewModule("re")

	m.RegisterFunc("match", -1, "match a pattern at the start of a string", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 2 || len(args) > 3 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "match() expects 2 or 3 arguments, got %d", len(args))
		}
		pattern, fail := str("match", "pattern", args[0])
		if fail != nil {
			return nil, fail
		}
		subject, fail := str("match", "string", args[1])
		if fail != nil {
			return nil, fail
		}
		flags, fail := optionalFlags("match", args, 2)
		if fail != nil {
			return nil, fail
		}
		re, fail := compile("match", anchored(pattern), flags)
		if fail != nil {
			return nil, fail
		}
		loc := re.FindStringSubmatchIndex(subject)
		if loc == nil {
			return hazel.Nil, nil
		}
		return matchDict(re, subject, loc), nil
	})
	m.RegisterFunc("search", -1, "search for a pattern anywhere in a string", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		re, subject, fail := patternArgs("search", args)
		if fail != nil {
			return nil, fail
		}
		loc := re.FindStringSubmatchIndex(subject)
		if loc == nil {
			return hazel.Nil, nil
		}
		return matchDict(re, subject, loc), nil
	})
	m.RegisterFunc("find_all", -1, "all matches as strings", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		re, subject, fail := patternArgs("find_all", args)
		if fail != nil {
			return nil, fail
		}
		found := re.FindAllStringSubmatch(subject, -1)
		out := make([]hazel.Value, len(found))
		for i, groups := range found {
			switch re.NumSubexp() {
			case 0:
				out[i] = hazel.Str(groups[0])
			case 1:
				out[i] = hazel.Str(groups[1])
			default:
				elems := make([]hazel.Value, len(groups)-1)
				for j, g := range groups[1:] {
					elems[j] = hazel.Str(g)
				}
				out[i] = hazel.NewArray(elems...)
			}
		}
		return hazel.NewArray(out...), nil
	})
	m.RegisterFunc("find_iter", -1, "all matches as match objects", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		re, subject, fail := patternArgs("find_iter", args)
		if fail != nil {
			return nil, fail
		}
		locs := re.FindAllStringSubmatchIndex(subject, -1)
		out := make([]hazel.Value, len(locs))
		for i, loc := range locs {
			out[i] = matchDict(re, subject, loc)
		}
		return hazel.NewArray(out...), nil
	})
	m.RegisterFunc("replace", -1, "replace matches, with optional count", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 3 || len(args) > 5 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "replace() expects 3 to 5 arguments, got %d", len(args))
		}
		pattern, fail := str("replace", "pattern", args[0])
		if fail != nil {
			return nil, fail
		}
		repl, fail := str("replace", "repl", args[1])
		if fail != nil {
			return nil, fail
		}
		subject, fail := str("replace", "string", args[2])
		if fail != nil {
			return nil, fail
		}
		count := 0
		if len(args) > 3 {
			n, ok := args[3].(hazel.Int)
			if !ok {
				return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "replace() requires int count, got %s", args[3].TypeName())
			}
			count = int(n)
		}
		flags, fail := optionalFlags("replace", args, 4)
		if fail != nil {
			return nil, fail
		}
		re, fail := compile("replace", pattern, flags)
		if fail != nil {
			return nil, fail
		}
		return hazel.Str(replaceAt(re, subject, repl, count)), nil
	})
	m.RegisterFunc("split", -1, "split a string by a pattern, with optional limit", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 2 || len(args) > 4 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "split() expects 2 to 4 arguments, got %d", len(args))
		}
		pattern, fail := str("split", "pattern", args[0])
		if fail != nil {
			return nil, fail
		}
		subject, fail := str("split", "string", args[1])
		if fail != nil {
			return nil, fail
		}
		maxsplit := 0
		if len(args) > 2 {
			n, ok := args[2].(hazel.Int)
			if !ok {
				return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "split() requires int maxsplit, got %s", args[2].TypeName())
			}
			maxsplit = int(n)
		}
		flags, fail := optionalFlags("split", args, 3)
		if fail != nil {
			return nil, fail
		}
		re, fail := compile("split", pattern, flags)
		if fail != nil {
			return nil, fail
		}
		limit := -1
		if maxsplit > 0 {
			limit = maxsplit + 1
		}
		parts := re.Split(subject, limit)
		out := make([]hazel.Value, len(parts))
		for i, p := range parts {
			out[i] = hazel.Str(p)
		}
		return hazel.NewArray(out...), nil
	})
	m.RegisterFunc("test", -1, "reports whether a pattern matches", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		re, subject, fail := patternArgs("test", args)
		if fail != nil {
			return nil, fail
		}
		return hazel.Bool(re.MatchString(subject)), nil
	})
	m.RegisterFunc("escape", 1, "escape regex metacharacters", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, fail := str("escape", "string", args[0])
		if fail != nil {
			return nil, fail
		}
		return hazel.Str(regexp.QuoteMeta(s)), nil
	})
	m.RegisterFunc("compile", -1, "precompile a pattern, returning its description", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 1 || len(args) > 2 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "compile() expects 1 or 2 arguments, got %d", len(args))
		}
		pattern, fail := str("compile", "pattern", args[0])
		if fail != nil {
			return nil, fail
		}
		flags, fail := optionalFlags("compile", args, 1)
		if fail != nil {
			return nil, fail
		}
		re, fail := compile("compile", pattern, flags)
		if fail != nil {
			return nil, fail
		}
		d := hazel.NewDict()
		d.Set("pattern", hazel.Str(pattern))
		d.Set("flags", hazel.Str(flags))
		d.Set("groups", hazel.Int(re.NumSubexp()))
		return d, nil
	})
	m.RegisterFunc("validate", 2, "validate a string against a named pattern", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		name, fail := str("validate", "pattern_name", args[0])
		if fail != nil {
			return nil, fail
		}
		subject, fail := str("validate", "string", args[1])
		if fail != nil {
			return nil, fail
		}
		for _, p := range namedPatterns {
			if p.name == name {
				re, fail := compile("validate", p.pattern, "")
				if fail != nil {
					return nil, fail
				}
				return hazel.Bool(re.MatchString(subject)), nil
			}
		}
		names := make([]string, len(namedPatterns))
		for i, p := range namedPatterns {
			names[i] = p.name
		}
		return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Unknown pattern: '%s'. Available: %s", name, strings.Join(names, ", "))
	})
	for _, p := range namedPatterns {
		m.RegisterConst("PATTERN_"+strings.ToUpper(p.name), hazel.Str(p.pattern), "pattern for matching "+p.name)
	}
	return m
}
