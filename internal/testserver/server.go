// Package testserver fakes the Keycloak, OS2mo and LoRa endpoints the
// clients talk to, with scriptable failures for retry and readiness tests.
package testserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/magenta-aps/raclients/pkg/auth"
)

// Request is one recorded service call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// GraphQLHandler produces the data payload (and optional error messages)
// for a GraphQL document.
type GraphQLHandler func(query string, variables map[string]any) (data any, errs []string)

type failure struct {
	times  int
	status int
	body   string
}

// Server hosts the fake endpoints on a single httptest server:
// Keycloak token grants under /realms, MO under /service, /version/ and
// /graphql, LoRa under /klassifikation, /organisation and /version.
type Server struct {
	*httptest.Server

	// Token is the bearer value the fake Keycloak hands out and every
	// protected route requires.
	Token string
	// TokenTTL is the expires_in value of issued tokens, in seconds.
	TokenTTL int

	mu       sync.Mutex
	grants   int
	requests []Request
	failures map[string]*failure
	notReady int
	graphql  GraphQLHandler
}

// New starts the fake server and shuts it down with the test.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		Token:    uuid.NewString(),
		TokenTTL: 300,
		failures: make(map[string]*failure),
	}

	r := chi.NewRouter()
	r.Post("/realms/{realm}/protocol/openid-connect/token", s.handleToken)

	r.Group(func(r chi.Router) {
		r.Use(s.requireBearer)

		// OS2mo.
		r.Get("/version/", s.handleMOVersion)
		r.Post("/service/e/create", s.handleUpload)
		r.Post("/service/ou/create", s.handleUpload)
		r.Post("/service/details/create", s.handleUpload)
		r.Post("/service/details/edit", s.handleUpload)
		r.Post("/service/f/{facetUUID}/", s.handleUpload)
		r.Post("/graphql", s.handleGraphQL)
		r.Post("/graphql/v{version}", s.handleGraphQL)

		// LoRa.
		r.Get("/version", s.handleLoRaVersion)
		r.Put("/klassifikation/facet/{uuid}", s.handleUpload)
		r.Put("/klassifikation/klasse/{uuid}", s.handleUpload)
		r.Put("/organisation/itsystem/{uuid}", s.handleUpload)
		r.Put("/organisation/organisation/{uuid}", s.handleUpload)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// AuthConfig returns an auth configuration pointing at the fake Keycloak.
func (s *Server) AuthConfig() auth.Config {
	return auth.Config{
		ClientID:     "AzureDiamond",
		ClientSecret: "hunter2",
		AuthRealm:    "mordor",
		AuthServer:   s.URL,
	}
}

// Grants returns the number of successful token grants.
func (s *Server) Grants() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grants
}

// Requests returns a snapshot of the recorded upload calls.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsFor returns the recorded calls against one path.
func (s *Server) RequestsFor(path string) []Request {
	var out []Request
	for _, req := range s.Requests() {
		if req.Path == path {
			out = append(out, req)
		}
	}
	return out
}

// FailNext makes the next n requests against path answer with the given
// status and body before normal handling resumes.
func (s *Server) FailNext(path string, n, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = &failure{times: n, status: status, body: body}
}

// SetNotReady makes the next n version probes fail, for readiness tests.
func (s *Server) SetNotReady(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notReady = n
}

// SetGraphQL installs the handler answering GraphQL documents.
func (s *Server) SetGraphQL(h GraphQLHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphql = h
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"description": "not authenticated"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleToken accepts client credentials either as basic auth or as form
// values, matching Keycloak (and the oauth2 package's style probing).
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_request"})
		return
	}

	id, secret, ok := r.BasicAuth()
	if !ok {
		id, secret = r.PostFormValue("client_id"), r.PostFormValue("client_secret")
	}
	if id != "AzureDiamond" || secret != "hunter2" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid_client"})
		return
	}

	s.mu.Lock()
	s.grants++
	ttl := s.TokenTTL
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": s.Token,
		"token_type":   "Bearer",
		"expires_in":   ttl,
	})
}

func (s *Server) handleMOVersion(w http.ResponseWriter, r *http.Request) {
	if s.consumeNotReady() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mo_version": "25.2.0"})
}

func (s *Server) handleLoRaVersion(w http.ResponseWriter, r *http.Request) {
	if s.consumeNotReady() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lora_version": "1.8.1"})
}

func (s *Server) consumeNotReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notReady > 0 {
		s.notReady--
		return true
	}
	return false
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var body any
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Body:   body,
	})
	f := s.failures[r.URL.Path]
	fail := f != nil && f.times > 0
	if fail {
		f.times--
	}
	s.mu.Unlock()

	if fail {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		fmt.Fprint(w, f.body)
		return
	}

	if r.Method == http.MethodPut {
		// LoRa echoes the imported object's UUID.
		writeJSON(w, http.StatusOK, map[string]any{"uuid": chi.URLParam(r, "uuid")})
		return
	}
	// MO returns the created object's UUID as a bare JSON string.
	writeJSON(w, http.StatusCreated, uuid.NewString())
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []any{map[string]any{"message": "malformed document"}}})
		return
	}

	s.mu.Lock()
	handler := s.graphql
	s.mu.Unlock()

	resp := map[string]any{"data": map[string]any{}}
	if handler != nil {
		data, errs := handler(req.Query, req.Variables)
		resp["data"] = data
		if len(errs) > 0 {
			var msgs []any
			for _, msg := range errs {
				msgs = append(msgs, map[string]any{"message": msg})
			}
			resp["errors"] = msgs
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
