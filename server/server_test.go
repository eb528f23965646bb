package server

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/broady/nullinfo"
	"github.com/broady/nullinfo/meta"
	"github.com/broady/nullinfo/testutil"
)

func testCatalog() *meta.Catalog {
	repo := &meta.TypeDef{
		Name:        meta.Identifier{Namespace: "Acme", Name: "Repo"},
		Annotations: []meta.Attribute{meta.NullableContext(2)},
	}
	str := meta.Class("System", "String")

	c := &meta.Catalog{}
	c.AddScope(repo)
	c.AddMember(&meta.Property{
		Name:          "Names",
		Type:          meta.Generic("System.Collections.Generic", "List`1", str),
		DeclaringType: repo,
		Annotations:   []meta.Attribute{meta.Nullable(1, 2)},
	})
	c.AddMember(&meta.Field{Name: "title", Type: str, DeclaringType: repo})

	tryGet := &meta.Method{
		Name:          "TryGet",
		ReturnType:    meta.Struct("System", "Boolean"),
		DeclaringType: repo,
		Annotations:   []meta.Attribute{meta.Nullable(1)},
	}
	tryGet.AddParameter("key", str)
	tryGet.AddParameter("value", meta.ByRef(meta.Class("System", "Object")), meta.Nullable(2))
	c.AddMember(tryGet)
	return c
}

func TestMembers(t *testing.T) {
	h := New(testCatalog(), nil).Handler()

	w := testutil.NewRequest().GET("/members").Do(h)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertHeader(t, w, "Content-Type", "application/json")
	var members []MemberSummary
	testutil.DecodeResult(t, w, &members)
	if len(members) != 3 {
		t.Fatalf("got %d members, want 3", len(members))
	}
	if members[0].Key != "Repo.Names" || members[0].Kind != "property" || members[0].Type != "List<String>" {
		t.Errorf("members[0] = %+v", members[0])
	}
	if got := strings.Join(members[2].Parameters, ","); got != "key,value" {
		t.Errorf("TryGet parameters = %q", got)
	}

	w = testutil.NewRequest().GET("/members").WithQuery("kind", "field").Do(h)
	members = nil
	testutil.DecodeResult(t, w, &members)
	if len(members) != 1 || members[0].Key != "Repo.title" {
		t.Errorf("field filter = %+v", members)
	}
}

func TestResolve(t *testing.T) {
	h := New(testCatalog(), nil).Handler()

	tests := []struct {
		target    string
		wantState string
		wantType  string
	}{
		{"/resolve?member=Repo.Names", "notnull", "List<String>"},
		{"/resolve?member=Repo.title", "nullable", "String"},
		{"/resolve?member=Repo.TryGet", "notnull", "Boolean"},
		{"/resolve?member=Repo.TryGet&param=key", "notnull", "String"},
		{"/resolve?member=Repo.TryGet&param=value", "notnull", "Object&"},
		{"/resolve?member=Repo.Names&unused=1", "notnull", "List<String>"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := testutil.NewRequest().GET(tt.target).Do(h)
			testutil.AssertStatus(t, w, http.StatusOK)
			var info struct {
				Type             string `json:"type"`
				ReadState        string `json:"readState"`
				GenericArguments []struct {
					ReadState string `json:"readState"`
				} `json:"genericArguments"`
			}
			testutil.DecodeResult(t, w, &info)
			if info.ReadState != tt.wantState || info.Type != tt.wantType {
				t.Errorf("got %s %s, want %s %s", info.Type, info.ReadState, tt.wantType, tt.wantState)
			}
		})
	}

	result := testutil.ResultJSON(t, testutil.NewRequest().GET("/resolve").WithQuery("member", "Repo.Names").Do(h))
	if !bytes.Contains(result, []byte(`"genericArguments":[{"type":"String","kind":"Scalar","readState":"nullable"`)) {
		t.Errorf("Names tree = %s", result)
	}
}

func TestResolve_Errors(t *testing.T) {
	h := New(testCatalog(), nil).Handler()

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantCode   ErrorCode
		wantDetail string
	}{
		{"missing member", "GET", "/resolve", http.StatusBadRequest, CodeInvalidArgument, "Member"},
		{"unknown member", "GET", "/resolve?member=Repo.Nope", http.StatusNotFound, CodeNotFound, ""},
		{"unknown param", "GET", "/resolve?member=Repo.TryGet&param=nope", http.StatusNotFound, CodeNotFound, ""},
		{"param on property", "GET", "/resolve?member=Repo.Names&param=x", http.StatusBadRequest, CodeInvalidArgument, "param"},
		{"bad kind", "GET", "/members?kind=event", http.StatusBadRequest, CodeInvalidArgument, "Kind"},
		{"post", "POST", "/resolve?member=Repo.Names", http.StatusMethodNotAllowed, CodeMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.NewRequest().Method(tt.method, tt.target).Do(h)
			testutil.AssertStatus(t, w, tt.wantStatus)
			errResp := testutil.AssertJSONError(t, w, string(tt.wantCode))
			if tt.wantDetail != "" {
				if _, ok := errResp.Details[tt.wantDetail]; !ok {
					t.Errorf("expected detail %q, got %v", tt.wantDetail, errResp.Details)
				}
			}
		})
	}
}

func TestServer_ResolverOptions(t *testing.T) {
	c := testCatalog()
	c.Scopes[0].Annotations = []meta.Attribute{meta.NullableContext(1)}

	s := New(c, nullinfo.NewResolver().WithContextNotNull())
	info, err := s.Resolve(ResolveRequest{Member: "Repo.title"})
	if err != nil {
		t.Fatal(err)
	}
	if info.ReadState != nullinfo.NotNull {
		t.Errorf("title = %v, want notnull", info.ReadState)
	}

	if _, err := s.Resolve(ResolveRequest{Member: "X.Y"}); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("error = %v, want ErrMemberNotFound", err)
	}

	s = New(testCatalog(), nullinfo.NewResolver().WithParameterAnnotations())
	info, err = s.Resolve(ResolveRequest{Member: "Repo.TryGet", Param: "value"})
	if err != nil {
		t.Fatal(err)
	}
	if info.ReadState != nullinfo.Nullable {
		t.Errorf("value = %v, want nullable", info.ReadState)
	}
}

func TestNew_NilCatalog(t *testing.T) {
	h := New(nil, nil).Handler()

	w := testutil.NewRequest().GET("/members").Do(h)
	testutil.AssertStatus(t, w, http.StatusOK)
	var members []MemberSummary
	testutil.DecodeResult(t, w, &members)
	if len(members) != 0 {
		t.Errorf("got %d members, want 0", len(members))
	}

	w = testutil.NewRequest().GET("/resolve").WithQuery("member", "Repo.Names").Do(h)
	testutil.AssertStatus(t, w, http.StatusNotFound)
	testutil.AssertJSONError(t, w, string(CodeNotFound))
}

func TestServer_LoggingAndCORS(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := New(testCatalog(), nil).WithLogger(logger).WithCORS(nil).Handler()

	w := testutil.NewRequest().
		GET("/resolve").
		WithQuery("member", "Repo.Nope").
		WithHeader("Origin", "http://example.com").
		Do(h)

	testutil.AssertHeader(t, w, "Access-Control-Allow-Origin", "*")
	logOutput := buf.String()
	if !strings.Contains(logOutput, "request failed") || !strings.Contains(logOutput, "member not found: Repo.Nope") {
		t.Errorf("log output = %s", logOutput)
	}
}

func TestErrorTransformer(t *testing.T) {
	h := New(testCatalog(), nil).WithErrorTransformer(func(err error) *Error {
		if errors.Is(err, ErrMemberNotFound) {
			return NewError(CodeInvalidArgument, "no such member")
		}
		return nil
	}).Handler()

	w := testutil.NewRequest().GET("/resolve?member=Repo.Nope").Do(h)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	if errResp := testutil.AssertJSONError(t, w, string(CodeInvalidArgument)); errResp.Message != "no such member" {
		t.Errorf("message = %q, want no such member", errResp.Message)
	}

	// Fallback to the default transformer.
	w = testutil.NewRequest().GET("/resolve").Do(h)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	testutil.AssertJSONError(t, w, string(CodeInvalidArgument))
}

func TestDefaultErrorTransformer(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"service error", NewError(CodeNotFound, "x"), CodeNotFound},
		{"wrapped not found", errors.Join(ErrMemberNotFound), CodeNotFound},
		{"other", errors.New("boom"), CodeInternal},
	}
	for _, tt := range tests {
		got := DefaultErrorTransformer(tt.err)
		if tt.want == "" {
			if got != nil {
				t.Errorf("%s: expected nil, got %+v", tt.name, got)
			}
			continue
		}
		if got.Code != tt.want {
			t.Errorf("%s: code = %s, want %s", tt.name, got.Code, tt.want)
		}
	}

	for code, status := range map[ErrorCode]int{
		CodeInvalidArgument:  400,
		CodeNotFound:         404,
		CodeMethodNotAllowed: 405,
		CodeCanceled:         499,
		CodeDeadlineExceeded: 504,
		CodeInternal:         500,
	} {
		if got := code.HTTPStatus(); got != status {
			t.Errorf("%s.HTTPStatus() = %d, want %d", code, got, status)
		}
	}
}
