package netmod

import (
	"io"
	"net/http"
	"net/http/httptest"
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

func field(t *testing.T, v hazel.Value, key string) hazel.Value {
	t.Helper()
	d, ok := v.(*hazel.Dict)
	if !ok {
		t.Fatalf("response = %T, want dict", v)
	}
	e, ok := d.Get(key)
	if !ok {
		t.Fatalf("response has no %q key", key)
	}
	return e
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("server saw method %s, want GET", r.Method)
		}
		w.Header().Set("X-Token", r.Header.Get("X-Token"))
		io.WriteString(w, "hello")
	}))
	defer srv.Close()

	m := Module()
	headers := hazel.NewDict()
	headers.Set("X-Token", hazel.Str("abc"))
	v := call(t, m, "get", hazel.Str(srv.URL), headers)

	if got := field(t, v, "status"); !hazel.Equal(got, hazel.Int(200)) {
		t.Errorf("status = %v, want 200", got)
	}
	if got := field(t, v, "body"); !hazel.Equal(got, hazel.Str("hello")) {
		t.Errorf("body = %v, want hello", got)
	}
	respHeaders, _ := field(t, v, "headers").(*hazel.Dict)
	if respHeaders == nil {
		t.Fatal("headers missing from response")
	}
	if got, _ := respHeaders.Get("X-Token"); !hazel.Equal(got, hazel.Str("abc")) {
		t.Errorf("echoed header = %v, want abc", got)
	}
	if _, ok := v.(*hazel.Dict).Get("error"); ok {
		t.Error("success response carries an error key")
	}
}

func TestPostJSON(t *testing.T) {
	var gotBody string
	var gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	m := Module()
	data := hazel.NewDict()
	data.Set("name", hazel.Str("ada"))
	data.Set("n", hazel.Int(2))
	v := call(t, m, "post", hazel.Str(srv.URL), data)

	if got := field(t, v, "status"); !hazel.Equal(got, hazel.Int(201)) {
		t.Errorf("status = %v, want 201", got)
	}
	if gotType != "application/json" {
		t.Errorf("content type = %q, want application/json", gotType)
	}
	if gotBody != `{"n":2,"name":"ada"}` && gotBody != `{"name":"ada","n":2}` {
		t.Errorf("request body = %q, want the dict as JSON", gotBody)
	}
}

func TestErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	m := Module()
	v := call(t, m, "get", hazel.Str(srv.URL))
	if got := field(t, v, "status"); !hazel.Equal(got, hazel.Int(404)) {
		t.Errorf("status = %v, want 404", got)
	}
	if got := field(t, v, "error"); !hazel.Equal(got, hazel.Str("HTTP 404: Not Found")) {
		t.Errorf("error = %v, want HTTP 404: Not Found", got)
	}
}

func TestRequestMethod(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Method
	}))
	defer srv.Close()

	m := Module()
	call(t, m, "request", hazel.Str("patch"), hazel.Str(srv.URL))
	if seen != "PATCH" {
		t.Errorf("server saw method %s, want PATCH", seen)
	}
	_, fail := m.Call("request", []hazel.Value{hazel.Str("YOINK"), hazel.Str(srv.URL)})
	if fail == nil || fail.Kind != hazel.ValueFailure {
		t.Errorf("invalid method failure = %v, want value failure", fail)
	}
}

func TestConnectionFailure(t *testing.T) {
	m := Module()
	_, fail := m.Call("get", []hazel.Value{hazel.Str("http://127.0.0.1:1/absent")})
	if fail == nil || fail.Kind != hazel.IOFailure {
		t.Errorf("unreachable host failure = %v, want IO failure", fail)
	}
}

func TestURLHelpers(t *testing.T) {
	m := Module()

	params := hazel.NewDict()
	params.Set("q", hazel.Str("a b"))
	params.Set("page", hazel.Int(2))
	if v := call(t, m, "encode_url", params); !hazel.Equal(v, hazel.Str("q=a+b&page=2")) {
		t.Errorf("encode_url = %v, want q=a+b&page=2", v)
	}

	v := call(t, m, "decode_url", hazel.Str("q=a+b&page=2"))
	d, ok := v.(*hazel.Dict)
	if !ok || d.Len() != 2 {
		t.Fatalf("decode_url = %v, want 2 keys", v)
	}
	if got, _ := d.Get("q"); !hazel.Equal(got, hazel.Str("a b")) {
		t.Errorf("decoded q = %v, want a b", got)
	}
	if keys := d.Keys(); keys[0] != "q" || keys[1] != "page" {
		t.Errorf("decoded key order = %v, want [q, page]", keys)
	}

	v = call(t, m, "parse_url", hazel.Str("https://user:pw@example.com:8443/docs?x=1#top"))
	wants := map[string]hazel.Value{
		"scheme":   hazel.Str("https"),
		"netloc":   hazel.Str("user:pw@example.com:8443"),
		"path":     hazel.Str("/docs"),
		"query":    hazel.Str("x=1"),
		"fragment": hazel.Str("top"),
		"username": hazel.Str("user"),
		"password": hazel.Str("pw"),
		"hostname": hazel.Str("example.com"),
		"port":     hazel.Int(8443),
	}
	for key, want := range wants {
		if got := field(t, v, key); !hazel.Equal(got, want) {
			t.Errorf("parse_url %s = %v, want %v", key, got, want)
		}
	}

	if v := call(t, m, "build_url", hazel.Str("https://x.test/a"), params); !hazel.Equal(v, hazel.Str("https://x.test/a?q=a+b&page=2")) {
		t.Errorf("build_url = %v", v)
	}
	if v := call(t, m, "build_url", hazel.Str("https://x.test/a?y=1"), params); !hazel.Equal(v, hazel.Str("https://x.test/a?y=1&q=a+b&page=2")) {
		t.Errorf("build_url with existing query = %v", v)
	}
}

func TestStatusChecks(t *testing.T) {
	m := Module()
	cases := map[string]struct {
		name string
		code int
		want bool
	}{
		"success":        {"is_success", 204, true},
		"notSuccess":     {"is_success", 301, false},
		"redirect":       {"is_redirect", 302, true},
		"clientError":    {"is_client_error", 404, true},
		"serverError":    {"is_server_error", 503, true},
		"notServerError": {"is_server_error", 404, false},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if v := call(t, m, c.name, hazel.Int(c.code)); !hazel.Equal(v, hazel.Bool(c.want)) {
				t.Errorf("%s(%d) = %v, want %v", c.name, c.code, v, c.want)
			}
		})
	}
	if v, fail := m.Constant("STATUS_NOT_FOUND"); fail != nil || !hazel.Equal(v, hazel.Int(404)) {
		t.Errorf("STATUS_NOT_FOUND = %v, %v, want 404", v, fail)
	}
}
