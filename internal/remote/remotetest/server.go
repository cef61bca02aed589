// Package remotetest provides an in-memory task service for tests, speaking the
// same routes and JSON shapes as the real backend.
package remotetest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BuzzLyutic/tasks-client/internal/model"
)

var (
	errNotFound   = errors.New("not found")
	errValidation = errors.New("validation error")
)

type ctxKey string

const userKey ctxKey = "user"

type user struct {
	id       int64
	name     string
	email    string
	password string
}

type failure struct {
	code    int
	message string
}

// Server is a fake task service. All exported methods are safe for concurrent use.
type Server struct {
	*httptest.Server

	Now func() time.Time

	secret []byte
	calls  atomic.Int64

	mu       sync.Mutex
	users    map[string]*user // by email
	tasks    map[int64]map[int64]model.Task
	nextUser int64
	nextTask int64
	failures []failure
	requests []string
}

func NewServer() *Server {
	s := &Server{
		Now:    time.Now,
		secret: []byte("remotetest-secret"),
		users:  make(map[string]*user),
		tasks:  make(map[int64]map[int64]model.Task),
	}
	s.Server = httptest.NewServer(s.Handler())
	return s
}

// Setup starts a server and returns it with its cleanup func.
func Setup(t *testing.T) (*Server, func()) {
	t.Helper()
	s := NewServer()
	return s, s.Close
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.injectFailures)

	r.Post("/signin", s.signIn)
	r.Post("/signup", s.signUp)

	r.Route("/tasks", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/", s.listTasks)
		r.Post("/", s.createTask)
		r.Put("/{id}", s.updateTask)
		r.Put("/{id}/toggle", s.toggleTask)
		r.Delete("/{id}", s.deleteTask)
	})
	return r
}

// AddUser registers an account directly, bypassing /signup.
func (s *Server) AddUser(name, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addUserLocked(name, email, password)
}

func (s *Server) addUserLocked(name, email, password string) *user {
	s.nextUser++
	u := &user{id: s.nextUser, name: name, email: strings.ToLower(email), password: password}
	s.users[u.email] = u
	s.tasks[u.id] = make(map[int64]model.Task)
	return u
}

// Token signs a session token for a registered email, or returns "".
func (s *Server) Token(email string) string {
	s.mu.Lock()
	u, ok := s.users[strings.ToLower(email)]
	s.mu.Unlock()
	if !ok {
		return ""
	}
	tok, err := s.sign(u)
	if err != nil {
		return ""
	}
	return tok
}

// Seed stores tasks for the user, assigning ids, and returns the stored copies.
func (s *Server) Seed(email string, tasks ...model.Task) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil
	}
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		s.nextTask++
		t.ID = s.nextTask
		s.tasks[u.id][t.ID] = t
		out = append(out, t)
	}
	return out
}

// Tasks returns the stored tasks of a user ordered by estimateAt.
func (s *Server) Tasks(email string) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil
	}
	return s.sortedLocked(u.id)
}

// FailNext makes the next request answer code with an {error: message} body.
// An empty message produces an empty JSON object.
func (s *Server) FailNext(code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{code: code, message: message})
}

// Calls counts every request received.
func (s *Server) Calls() int64 {
	return s.calls.Load()
}

// Requests lists "METHOD /path" of every request received, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var f *failure
		if len(s.failures) > 0 {
			f = &s.failures[0]
			s.failures = s.failures[1:]
		}
		s.mu.Unlock()

		if f == nil {
			next.ServeHTTP(w, r)
			return
		}
		writeFailure(w, r, f.code, f.message)
	})
}

// authenticate checks the Bearer token and puts the user into the context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.Header.Get("Authorization"), " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeFailure(w, r, http.StatusUnauthorized, "Acesso negado")
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeFailure(w, r, http.StatusUnauthorized, "Token inválido")
			return
		}

		email, _ := claims["email"].(string)
		s.mu.Lock()
		u, ok := s.users[email]
		s.mu.Unlock()
		if !ok {
			writeFailure(w, r, http.StatusUnauthorized, "Token inválido")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

func (s *Server) sign(u *user) (string, error) {
	claims := jwt.MapClaims{
		"id":    u.id,
		"name":  u.name,
		"email": u.email,
		"iat":   s.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) sortedLocked(userID int64) []model.Task {
	out := make([]model.Task, 0, len(s.tasks[userID]))
	for _, t := range s.tasks[userID] {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EstimateAt.Time.Equal(out[j].EstimateAt.Time) {
			return out[i].EstimateAt.Time.Before(out[j].EstimateAt.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
