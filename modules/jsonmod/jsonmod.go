// Package jsonmod provides the json standard library module.
package jsonmod

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/hazel-lang/hazel"
)

// Module builds the json module.
func Module() *hazel.Module {
	m := hazel.NewModule("json")

	m.RegisterFunc("parse", 1, "parse a JSON string", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, ok := args[0].(hazel.Str)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "parse() requires string, got %s", args[0].TypeName())
		}
		return parse(string(s))
	})
	m.RegisterFunc("stringify", -1, "encode a value as JSON, optionally indented", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 1 || len(args) > 2 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "stringify() expects 1 or 2 arguments, got %d", len(args))
		}
		return stringify(args)
	})
	m.RegisterFunc("read", 1, "read and parse a JSON file", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		path, ok := args[0].(hazel.Str)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "read() requires string path, got %s", args[0].TypeName())
		}
		raw, err := os.ReadFile(string(path))
		if err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot read '%s': %s", path, err)
		}
		return parse(string(raw))
	})
	m.RegisterFunc("write", -1, "encode a value to a JSON file", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 2 || len(args) > 3 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "write() expects 2 or 3 arguments, got %d", len(args))
		}
		path, ok := args[0].(hazel.Str)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "write() requires string path, got %s", args[0].TypeName())
		}
		encoded, fail := stringify(args[1:])
		if fail != nil {
			return nil, fail
		}
		if dir := filepath.Dir(string(path)); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot create directory for '%s': %s", path, err)
			}
		}
		if err := os.WriteFile(string(path), []byte(encoded.(hazel.Str)), 0o644); err != nil {
			return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot write '%s': %s", path, err)
		}
		return hazel.Bool(true), nil
	})
	m.RegisterFunc("is_valid", 1, "reports whether a string is valid JSON", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, ok := args[0].(hazel.Str)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "is_valid() requires string, got %s", args[0].TypeName())
		}
		return hazel.Bool(json.Valid([]byte(s))), nil
	})
	return m
}

func parse(s string) (hazel.Value, *hazel.Failure) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Invalid JSON: %s", err)
	}
	return v, nil
}

// decodeValue walks the token stream so object keys keep their source
// order.
func decodeValue(dec *json.Decoder) (hazel.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return valueFromToken(dec, tok)
}

func valueFromToken(dec *json.Decoder, tok json.Token) (hazel.Value, error) {
	switch tok := tok.(type) {
	case json.Delim:
		switch tok {
		case '[':
			a := hazel.NewArray()
			for dec.More() {
				e, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				a.Elems = append(a.Elems, e)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return a, nil
		case '{':
			d := hazel.NewDict()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				d.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return d, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", tok)
	case nil:
		return hazel.Nil, nil
	case bool:
		return hazel.Bool(tok), nil
	case string:
		return hazel.Str(tok), nil
	case json.Number:
		if n, err := tok.Int64(); err == nil {
			return hazel.Int(n), nil
		}
		f, err := tok.Float64()
		if err != nil {
			return nil, err
		}
		return hazel.Float(f), nil
	case float64:
		return hazel.Float(tok), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func stringify(args []hazel.Value) (hazel.Value, *hazel.Failure) {
	raw := fromValue(args[0])
	var encoded []byte
	var err error
	if len(args) == 2 {
		indent, ok := args[1].(hazel.Int)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "stringify() indent must be int, got %s", args[1].TypeName())
		}
		encoded, err = json.MarshalIndent(raw, "", strings.Repeat(" ", int(indent)))
	} else {
		encoded, err = json.Marshal(raw)
	}
	if err != nil {
		return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Cannot convert to JSON: %s", err)
	}
	return hazel.Str(encoded), nil
}

// fromValue converts a runtime value to JSON-encodable data.
// Non-serializable values encode as their display strings.
func fromValue(v hazel.Value) interface{} {
	switch v := v.(type) {
	case hazel.Null, nil:
		return nil
	case hazel.Bool:
		return bool(v)
	case hazel.Int:
		return int64(v)
	case hazel.Float:
		return float64(v)
	case hazel.Str:
		return string(v)
	case *hazel.Array:
		out := make([]interface{}, len(v.Elems))
		for i, e := range v.Elems {
			out[i] = fromValue(e)
		}
		return out
	case *hazel.Dict:
		out := make(map[string]interface{}, v.Len())
		for _, k := range v.Keys() {
			e, _ := v.Get(k)
			out[k] = fromValue(e)
		}
		return out
	}
	return hazel.AsString(v)
}
