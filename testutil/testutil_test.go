package testutil

import (
	"io"
	"net/http"
	"testing"
)

func TestRequestBuilder(t *testing.T) {
	req, _ := NewRequest().
		GET("/resolve").
		WithQuery("member", "Repo.TryGet").
		WithQuery("param", "a b").
		WithHeader("Origin", "http://example.com").
		Build()

	if req.Method != http.MethodGet {
		t.Errorf("method = %s, want GET", req.Method)
	}
	if got, want := req.URL.RequestURI(), "/resolve?member=Repo.TryGet&param=a+b"; got != want {
		t.Errorf("uri = %s, want %s", got, want)
	}
	if got := req.Header.Get("Origin"); got != "http://example.com" {
		t.Errorf("Origin = %q", got)
	}

	req, _ = NewRequest().Method(http.MethodPost, "/members?kind=field").WithQuery("x", "1").Build()
	if got, want := req.URL.RequestURI(), "/members?kind=field&x=1"; got != want {
		t.Errorf("uri = %s, want %s", got, want)
	}
}

func TestEnvelopeHelpers(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("fail") != "" {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"code":"not_found","message":"member not found: X.Y"}}`)
			return
		}
		io.WriteString(w, `{"result":["Repo.Names"]}`)
	})

	w := NewRequest().GET("/members").Do(h)
	AssertStatus(t, w, http.StatusOK)
	var keys []string
	DecodeResult(t, w, &keys)
	if len(keys) != 1 || keys[0] != "Repo.Names" {
		t.Errorf("keys = %v", keys)
	}

	w = NewRequest().GET("/resolve").WithQuery("fail", "1").Do(h)
	AssertStatus(t, w, http.StatusNotFound)
	if e := AssertJSONError(t, w, "not_found"); e.Message != "member not found: X.Y" {
		t.Errorf("message = %q", e.Message)
	}
}
