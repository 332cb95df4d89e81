// Package hashmod provides the crypto standard library module: digest,
// HMAC and encoding helpers.
package hashmod

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"hash"
	"net/url"

	"github.com/hazel-lang/hazel"
)

func str(name string, v hazel.Value) (string, *hazel.Failure) {
	if s, ok := v.(hazel.Str); ok {
		return string(s), nil
	}
	return "", hazel.NewFailuref(hazel.TypeFailure, 0, 0, "%s() requires string, got %s", name, v.TypeName())
}

var digests = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
}

func digestFunc(m *hazel.Module, name string) {
	m.RegisterFunc(name, 1, name+" hex digest", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, fail := str(name, args[0])
		if fail != nil {
			return nil, fail
		}
		h := digests[name]()
		h.Write([]byte(s))
		return hazel.Str(hex.EncodeToString(h.Sum(nil))), nil
	})
}

// Module builds the crypto module.
func Module() *hazel.Module {
	m := hazel.NewModule("crypto")

	for name := range digests {
		digestFunc(m, name)
	}
	m.RegisterFunc("hash", 2, "hex digest with a named algorithm", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		algo, fail := str("hash", args[0])
		if fail != nil {
			return nil, fail
		}
		s, fail := str("hash", args[1])
		if fail != nil {
			return nil, fail
		}
		mk, ok := digests[algo]
		if !ok {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Unknown hash algorithm '%s'", algo)
		}
		h := mk()
		h.Write([]byte(s))
		return hazel.Str(hex.EncodeToString(h.Sum(nil))), nil
	})
	m.RegisterFunc("hmac", -1, "HMAC hex signature with optional algorithm", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 2 || len(args) > 3 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "hmac() expects 2 or 3 arguments, got %d", len(args))
		}
		key, fail := str("hmac", args[0])
		if fail != nil {
			return nil, fail
		}
		msg, fail := str("hmac", args[1])
		if fail != nil {
			return nil, fail
		}
		algo := "sha256"
		if len(args) == 3 {
			algo, fail = str("hmac", args[2])
			if fail != nil {
				return nil, fail
			}
		}
		mk, ok := digests[algo]
		if !ok {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Unknown hash algorithm '%s'", algo)
		}
		h := hmac.New(mk, []byte(key))
		h.Write([]byte(msg))
		return hazel.Str(hex.EncodeToString(h.Sum(nil))), nil
	})
	m.RegisterFunc("base64_encode", 1, "base64 encode", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, fail := str("base64_encode", args[0])
		if fail != nil {
			return nil, fail
		}
		return hazel.Str(base64.StdEncoding.EncodeToString([]byte(s))), nil
	})
	m.RegisterFunc("base64_decode", 1, "base64 decode", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, fail := str("base64_decode", args[0])
		if fail != nil {
			return nil, fail
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Invalid base64: %s", err)
		}
		return hazel.Str(raw), nil
	})
	m.RegisterFunc("base64_urlsafe_encode", 1, "URL-safe base64 encode", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, fail := str("base64_urlsafe_encode", args[0])
		if fail != nil {
			return nil, fail
		}
		return hazel.Str(base64.URLEncoding.EncodeToString([]byte(s))), nil
	})
	m.RegisterFunc("base64_urlsafe_decode", 1, "URL-safe base64 decode", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, fail := str("base64_urlsafe_decode", args[0])
		if fail != nil {
			return nil, fail
		}
		raw, err := base64.URLEncoding.DecodeString(s)
		if err != nil {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Invalid base64: %s", err)
		}
		return hazel.Str(raw), nil
	})
	m.RegisterFunc("url_encode", 1, "percent-encode for URLs", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, fail := str("url_encode", args[0])
		if fail != nil {
			return nil, fail
		}
		return hazel.Str(url.PathEscape(s)), nil
	})
	m.RegisterFunc("url_decode", 1, "percent-decode", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, fail := str("url_decode", args[0])
		if fail != nil {
			return nil, fail
		}
		out, err := url.PathUnescape(s)
		if err != nil {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Invalid URL encoding: %s", err)
		}
		return hazel.Str(out), nil
	})
	m.RegisterFunc("url_encode_plus", 1, "percent-encode with plus for spaces", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, fail := str("url_encode_plus", args[0])
		if fail != nil {
			return nil, fail
		}
		return hazel.Str(url.QueryEscape(s)), nil
	})
	m.RegisterFunc("url_decode_plus", 1, "percent-decode with plus for spaces", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, fail := str("url_decode_plus", args[0])
		if fail != nil {
			return nil, fail
		}
		out, err := url.QueryUnescape(s)
		if err != nil {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Invalid URL encoding: %s", err)
		}
		return hazel.Str(out), nil
	})
	m.RegisterFunc("hex_encode", 1, "hex encode", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, fail := str("hex_encode", args[0])
		if fail != nil {
			return nil, fail
		}
		return hazel.Str(hex.EncodeToString([]byte(s))), nil
	})
	m.RegisterFunc("hex_decode", 1, "hex decode", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		s, fail := str("hex_decode", args[0])
		if fail != nil {
			return nil, fail
		}
		raw, err := hex.DecodeString(s)
		if err != nil {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Invalid hex: %s", err)
		}
		return hazel.Str(raw), nil
	})
	m.RegisterFunc("compare_digest", 2, "constant-time string comparison", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		a, fail := str("compare_digest", args[0])
		if fail != nil {
			return nil, fail
		}
		b, fail := str("compare_digest", args[1])
		if fail != nil {
			return nil, fail
		}
		return hazel.Bool(subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1), nil
	})
	return m
}
