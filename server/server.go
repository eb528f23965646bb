// Package server serves nullability lookups over HTTP.
//
// Endpoints:
//
//	GET /members[?kind=field|property|method]
//	GET /resolve?member=Type.Member[&param=name]
//
// Successful responses are wrapped as {"result": ...}; failures as
// {"error": {"code": ..., "message": ..., "details": ...}}.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/broady/nullinfo"
	"github.com/broady/nullinfo/meta"
	"github.com/broady/nullinfo/middleware"
)

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// MembersRequest filters the member listing.
type MembersRequest struct {
	Kind string `schema:"kind" validate:"omitempty,oneof=field property method"`
}

// ResolveRequest selects the member, or one of its parameters, to resolve.
// A method without a parameter resolves its return type.
type ResolveRequest struct {
	Member string `schema:"member" validate:"required,max=512"`
	Param  string `schema:"param" validate:"max=256"`
}

// MemberSummary describes one catalog member.
type MemberSummary struct {
	Key        string   `json:"key"`
	Kind       string   `json:"kind"`
	Type       string   `json:"type"`
	Parameters []string `json:"parameters,omitempty"`
}

// Server answers lookups against one catalog.
type Server struct {
	catalog     *meta.Catalog
	resolver    *nullinfo.Resolver
	index       map[string]meta.Member
	logger      *slog.Logger
	cors        *middleware.CORSConfig
	enableCORS  bool
	transformer ErrorTransformer
}

// New creates a Server. A nil catalog serves no members and a nil resolver
// uses nullinfo.NewResolver(). When two members share a key, the first one
// wins; see meta.Catalog.DuplicateWarnings.
func New(catalog *meta.Catalog, resolver *nullinfo.Resolver) *Server {
	if catalog == nil {
		catalog = &meta.Catalog{}
	}
	if resolver == nil {
		resolver = nullinfo.NewResolver()
	}
	s := &Server{
		catalog:  catalog,
		resolver: resolver,
		index:    make(map[string]meta.Member, len(catalog.Members)),
		logger:   slog.Default(),
	}
	for _, m := range catalog.Members {
		key := meta.Key(m)
		if _, dup := s.index[key]; !dup {
			s.index[key] = m
		}
	}
	return s
}

// WithLogger sets the logger for request logging and encoding failures.
func (s *Server) WithLogger(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s.logger = logger
	return s
}

// WithCORS enables CORS handling. A nil config allows every origin.
func (s *Server) WithCORS(cfg *middleware.CORSConfig) *Server {
	s.cors = cfg
	s.enableCORS = true
	return s
}

// WithErrorTransformer sets a custom mapping from errors to service errors.
func (s *Server) WithErrorTransformer(fn ErrorTransformer) *Server {
	s.transformer = fn
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/members", s.getOnly(s.handleMembers))
	mux.HandleFunc("/resolve", s.getOnly(s.handleResolve))

	var h http.Handler = mux
	if s.enableCORS {
		h = middleware.CORS(s.cors)(h)
	}
	return middleware.Logging(s.logger)(h)
}

func (s *Server) getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			s.handleError(w, r, Errorf(CodeMethodNotAllowed, "method %s not allowed", r.Method))
			return
		}
		next(w, r)
	}
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	var req MembersRequest
	if err := s.decode(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	out := make([]MemberSummary, 0, len(s.catalog.Members))
	for _, m := range s.catalog.Members {
		if req.Kind != "" && m.MemberKind().String() != req.Kind {
			continue
		}
		out = append(out, summarize(m))
	}
	writeResult(w, out, s.logger)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := s.decode(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	info, err := s.Resolve(req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeResult(w, info, s.logger)
}

func (s *Server) decode(r *http.Request, dst any) error {
	if err := schemaDecoder.Decode(dst, r.URL.Query()); err != nil {
		return err
	}
	return validate.Struct(dst)
}

// Resolve performs one lookup without HTTP.
func (s *Server) Resolve(req ResolveRequest) (*nullinfo.Info, error) {
	m, ok := s.index[req.Member]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, req.Member)
	}
	if req.Param == "" {
		return s.resolver.ForMember(m), nil
	}

	method, ok := m.(*meta.Method)
	if !ok {
		return nil, Errorf(CodeInvalidArgument, "member %s is a %s and has no parameters", req.Member, m.MemberKind()).
			WithDetail("param", req.Param)
	}
	p := method.Parameter(req.Param)
	if p == nil {
		return nil, fmt.Errorf("%w: %s(%s)", ErrMemberNotFound, req.Member, req.Param)
	}
	return s.resolver.ForParameter(p), nil
}

func summarize(m meta.Member) MemberSummary {
	sum := MemberSummary{Key: meta.Key(m), Kind: m.MemberKind().String()}
	switch m := m.(type) {
	case *meta.Field:
		sum.Type = meta.Format(m.Type)
	case *meta.Property:
		sum.Type = meta.Format(m.Type)
	case *meta.Method:
		sum.Type = meta.Format(m.ReturnType)
		for _, p := range m.Parameters {
			sum.Parameters = append(sum.Parameters, p.Name)
		}
	}
	return sum
}
