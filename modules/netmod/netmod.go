// Package netmod provides the net standard library module: an HTTP
// client and URL helpers. Error statuses return a response object with
// an error key rather than raising, so scripts can inspect them.
package netmod

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/hazel-lang/hazel"
)

// defaultTimeout applies when a request does not pass one.
const defaultTimeout = 30 * time.Second

var httpStatuses = []struct {
	name string
	code int
}{
	{"OK", 200},
	{"CREATED", 201},
	{"ACCEPTED", 202},
	{"NO_CONTENT", 204},
	{"MOVED_PERMANENTLY", 301},
	{"FOUND", 302},
	{"NOT_MODIFIED", 304},
	{"BAD_REQUEST", 400},
	{"UNAUTHORIZED", 401},
	{"FORBIDDEN", 403},
	{"NOT_FOUND", 404},
	{"METHOD_NOT_ALLOWED", 405},
	{"INTERNAL_ERROR", 500},
	{"NOT_IMPLEMENTED", 501},
	{"BAD_GATEWAY", 502},
	{"SERVICE_UNAVAILABLE", 503},
}

var validMethods = []string{"GET", "POST", "PUT", "DELETE", "HEAD", "PATCH", "OPTIONS", "TRACE"}

func str(name, what string, v hazel.Value) (string, *hazel.Failure) {
	if s, ok := v.(hazel.Str); ok {
		return string(s), nil
	}
	return "", hazel.NewFailuref(hazel.TypeFailure, 0, 0, "%s() requires string %s, got %s", name, what, v.TypeName())
}

// requestOpts reads the optional trailing (headers, timeout) arguments
// shared by the request functions.
func requestOpts(name string, args []hazel.Value) (*hazel.Dict, time.Duration, *hazel.Failure) {
	var headers *hazel.Dict
	timeout := defaultTimeout
	if len(args) > 0 && args[0] != hazel.Nil {
		d, ok := args[0].(*hazel.Dict)
		if !ok {
			return nil, 0, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "%s() requires dict headers, got %s", name, args[0].TypeName())
		}
		headers = d
	}
	if len(args) > 1 {
		switch v := args[1].(type) {
		case hazel.Int:
			timeout = time.Duration(v) * time.Second
		case hazel.Float:
			timeout = time.Duration(float64(v) * float64(time.Second))
		default:
			return nil, 0, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "%s() requires number timeout, got %s", name, args[1].TypeName())
		}
	}
	return headers, timeout, nil
}

// requestBody encodes the request payload. Dicts and arrays encode as
// JSON and imply the JSON content type.
func requestBody(name string, data hazel.Value) (string, string, *hazel.Failure) {
	switch data := data.(type) {
	case nil, hazel.Null:
		return "", "", nil
	case hazel.Str:
		return string(data), "", nil
	case *hazel.Dict, *hazel.Array:
		encoded, err := json.Marshal(jsonValue(data))
		if err != nil {
			return "", "", hazel.NewFailuref(hazel.ValueFailure, 0, 0, "%s() cannot encode request data: %s", name, err)
		}
		return string(encoded), "application/json", nil
	}
	return "", "", hazel.NewFailuref(hazel.TypeFailure, 0, 0, "%s() request data must be string, dict or array, got %s", name, data.TypeName())
}

func jsonValue(v hazel.Value) interface{} {
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
			out[i] = jsonValue(e)
		}
		return out
	case *hazel.Dict:
		out := make(map[string]interface{}, v.Len())
		for _, k := range v.Keys() {
			e, _ := v.Get(k)
			out[k] = jsonValue(e)
		}
		return out
	}
	return hazel.AsString(v)
}

// doRequest performs one HTTP exchange and packages the response as a
// dict: status, reason, headers, body, url, plus an error key for 4xx
// and 5xx statuses.
func doRequest(name, method, rawURL string, data hazel.Value, opts []hazel.Value) (hazel.Value, *hazel.Failure) {
	headers, timeout, fail := requestOpts(name, opts)
	if fail != nil {
		return nil, fail
	}
	body, contentType, fail := requestBody(name, data)
	if fail != nil {
		return nil, fail
	}

	req, err := http.NewRequest(method, rawURL, strings.NewReader(body))
	if err != nil {
		return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Request failed: %s", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if headers != nil {
		for _, k := range headers.Keys() {
			v, _ := headers.Get(k)
			req.Header.Set(k, hazel.AsString(v))
		}
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Request failed: %s", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, hazel.NewFailuref(hazel.IOFailure, 0, 0, "Cannot read response: %s", err)
	}

	respHeaders := hazel.NewDict()
	for _, k := range sortedHeaderKeys(resp.Header) {
		respHeaders.Set(k, hazel.Str(resp.Header.Get(k)))
	}
	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))

	d := hazel.NewDict()
	d.Set("status", hazel.Int(resp.StatusCode))
	d.Set("reason", hazel.Str(reason))
	d.Set("headers", respHeaders)
	d.Set("body", hazel.Str(raw))
	d.Set("url", hazel.Str(finalURL))
	if resp.StatusCode >= 400 {
		d.Set("error", hazel.Str(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, reason)))
	}
	return d, nil
}

func sortedHeaderKeys(h http.Header) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// bodyless registers a request function without a payload:
// name(url, headers?, timeout?).
func bodyless(m *hazel.Module, name, method, doc string) {
	m.RegisterFunc(name, -1, doc, func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 1 || len(args) > 3 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "%s() expects 1 to 3 arguments, got %d", name, len(args))
		}
		u, fail := str(name, "url", args[0])
		if fail != nil {
			return nil, fail
		}
		return doRequest(name, method, u, nil, args[1:])
	})
}

// payload registers a request function with a payload:
// name(url, data?, headers?, timeout?).
func payload(m *hazel.Module, name, method, doc string) {
	m.RegisterFunc(name, -1, doc, func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 1 || len(args) > 4 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "%s() expects 1 to 4 arguments, got %d", name, len(args))
		}
		u, fail := str(name, "url", args[0])
		if fail != nil {
			return nil, fail
		}
		var data hazel.Value
		if len(args) > 1 {
			data = args[1]
		}
		return doRequest(name, method, u, data, args[2:])
	})
}

// statusCheck registers an is_* predicate over a status code range.
func statusCheck(m *hazel.Module, name, doc string, lo, hi int) {
	m.RegisterFunc(name, 1, doc, func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		code, ok := args[0].(hazel.Int)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "%s() requires int, got %s", name, args[0].TypeName())
		}
		return hazel.Bool(int(code) >= lo && int(code) < hi), nil
	})
}

// Module builds the net module.
func Module() *hazel.Module {
	m := hazel.NewModule("net")

	bodyless(m, "get", http.MethodGet, "HTTP GET request")
	payload(m, "post", http.MethodPost, "HTTP POST request")
	payload(m, "put", http.MethodPut, "HTTP PUT request")
	bodyless(m, "delete", http.MethodDelete, "HTTP DELETE request")
	bodyless(m, "head", http.MethodHead, "HTTP HEAD request")
	m.RegisterFunc("request", -1, "HTTP request with an explicit method", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 2 || len(args) > 5 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "request() expects 2 to 5 arguments, got %d", len(args))
		}
		method, fail := str("request", "method", args[0])
		if fail != nil {
			return nil, fail
		}
		method = strings.ToUpper(method)
		valid := false
		for _, v := range validMethods {
			if method == v {
				valid = true
				break
			}
		}
		if !valid {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Invalid HTTP method: %s. Valid: %s", method, strings.Join(validMethods, ", "))
		}
		u, fail := str("request", "url", args[1])
		if fail != nil {
			return nil, fail
		}
		var data hazel.Value
		if len(args) > 2 {
			data = args[2]
		}
		return doRequest("request", method, u, data, args[3:])
	})

	m.RegisterFunc("encode_url", 1, "encode a dict as a query string", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		params, ok := args[0].(*hazel.Dict)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "encode_url() requires dict, got %s", args[0].TypeName())
		}
		return hazel.Str(encodeQuery(params)), nil
	})
	m.RegisterFunc("decode_url", 1, "decode a query string to a dict", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		qs, fail := str("decode_url", "string", args[0])
		if fail != nil {
			return nil, fail
		}
		return decodeQuery(qs)
	})
	m.RegisterFunc("parse_url", 1, "split a URL into its components", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		raw, fail := str("parse_url", "url", args[0])
		if fail != nil {
			return nil, fail
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Invalid URL: %s", err)
		}
		username := hazel.Value(hazel.Nil)
		password := hazel.Value(hazel.Nil)
		if u.User != nil {
			username = hazel.Str(u.User.Username())
			if pw, ok := u.User.Password(); ok {
				password = hazel.Str(pw)
			}
		}
		port := hazel.Value(hazel.Nil)
		if p := u.Port(); p != "" {
			n, err := strconv.Atoi(p)
			if err != nil {
				return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Invalid URL port: %s", p)
			}
			port = hazel.Int(n)
		}
		d := hazel.NewDict()
		d.Set("scheme", hazel.Str(u.Scheme))
		d.Set("netloc", hazel.Str(u.Host))
		d.Set("path", hazel.Str(u.Path))
		d.Set("query", hazel.Str(u.RawQuery))
		d.Set("fragment", hazel.Str(u.Fragment))
		d.Set("username", username)
		d.Set("password", password)
		d.Set("hostname", hazel.Str(u.Hostname()))
		d.Set("port", port)
		return d, nil
	})
	m.RegisterFunc("build_url", -1, "append query parameters to a base URL", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 1 || len(args) > 2 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "build_url() expects 1 or 2 arguments, got %d", len(args))
		}
		base, fail := str("build_url", "base", args[0])
		if fail != nil {
			return nil, fail
		}
		if len(args) == 1 || args[1] == hazel.Nil {
			return hazel.Str(base), nil
		}
		params, ok := args[1].(*hazel.Dict)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "build_url() requires dict params, got %s", args[1].TypeName())
		}
		if params.Len() == 0 {
			return hazel.Str(base), nil
		}
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		return hazel.Str(base + sep + encodeQuery(params)), nil
	})

	statusCheck(m, "is_success", "reports whether a status is 2xx", 200, 300)
	statusCheck(m, "is_redirect", "reports whether a status is 3xx", 300, 400)
	statusCheck(m, "is_client_error", "reports whether a status is 4xx", 400, 500)
	statusCheck(m, "is_server_error", "reports whether a status is 5xx", 500, 600)

	for _, s := range httpStatuses {
		m.RegisterConst("STATUS_"+s.name, hazel.Int(s.code), fmt.Sprintf("HTTP status code %d", s.code))
	}
	return m
}

// encodeQuery keeps the dict's key order, unlike url.Values.Encode
// which sorts.
func encodeQuery(params *hazel.Dict) string {
	var b strings.Builder
	for i, k := range params.Keys() {
		if i > 0 {
			b.WriteByte('&')
		}
		v, _ := params.Get(k)
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(hazel.AsString(v)))
	}
	return b.String()
}

// decodeQuery parses a query string preserving first-seen key order.
// A repeated key keeps its last value.
func decodeQuery(qs string) (hazel.Value, *hazel.Failure) {
	d := hazel.NewDict()
	if qs == "" {
		return d, nil
	}
	for _, pair := range strings.Split(qs, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Invalid query string: %s", err)
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Invalid query string: %s", err)
		}
		d.Set(k, hazel.Str(v))
	}
	return d, nil
}
