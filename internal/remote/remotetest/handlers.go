package remotetest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/BuzzLyutic/tasks-client/internal/model"
	"github.com/BuzzLyutic/tasks-client/pkg/respond"
)

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		respond.Error(w, r, http.StatusBadRequest, "Informe usuário e senha!")
		return
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok {
		respond.Error(w, r, http.StatusBadRequest, "Usuário não encontrado!")
		return
	}
	if u.password != req.Password {
		respond.Error(w, r, http.StatusUnauthorized, "Email/Senha inválidos!")
		return
	}

	token, err := s.sign(u)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req model.Registration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.Email == "" || req.Password == "" {
		respond.Error(w, r, http.StatusBadRequest, "Dados incompletos")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[strings.ToLower(req.Email)]; exists {
		respond.Error(w, r, http.StatusBadRequest, "E-mail já cadastrado")
		return
	}
	s.addUserLocked(req.Name, req.Email, req.Password)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value(userKey).(*user)

	s.mu.Lock()
	tasks := s.sortedLocked(u.id)
	s.mu.Unlock()

	respond.JSON(w, r, http.StatusOK, tasks)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value(userKey).(*user)

	var req model.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate(req); err != nil {
		s.handleErrors(w, r, err)
		return
	}

	s.mu.Lock()
	s.nextTask++
	t := model.Task{ID: s.nextTask, Desc: req.Desc, EstimateAt: model.At(req.EstimateAt)}
	s.tasks[u.id][t.ID] = t
	s.mu.Unlock()

	respond.JSON(w, r, http.StatusCreated, t)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value(userKey).(*user)
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var req model.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate(req); err != nil {
		s.handleErrors(w, r, err)
		return
	}

	s.mu.Lock()
	t, ok := s.tasks[u.id][id]
	if ok {
		t.Desc = req.Desc
		t.EstimateAt = model.At(req.EstimateAt)
		s.tasks[u.id][id] = t
	}
	s.mu.Unlock()

	if !ok {
		s.handleErrors(w, r, errNotFound)
		return
	}
	respond.JSON(w, r, http.StatusOK, t)
}

func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value(userKey).(*user)
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var req struct {
		DoneAt model.Timestamp `json:"doneAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	t, ok := s.tasks[u.id][id]
	if ok {
		t.DoneAt = req.DoneAt
		s.tasks[u.id][id] = t
	}
	s.mu.Unlock()

	if !ok {
		s.handleErrors(w, r, errNotFound)
		return
	}
	respond.JSON(w, r, http.StatusOK, t)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value(userKey).(*user)
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	s.mu.Lock()
	_, ok := s.tasks[u.id][id]
	delete(s.tasks[u.id], id)
	s.mu.Unlock()

	if !ok {
		s.handleErrors(w, r, errNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errNotFound):
		respond.Error(w, r, http.StatusNotFound, "Tarefa não encontrada")
	case errors.Is(err, errValidation):
		respond.Error(w, r, http.StatusBadRequest, "Descrição e data estimada são obrigatórias")
	default:
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}

func validate(in model.TaskInput) error {
	if strings.TrimSpace(in.Desc) == "" || in.EstimateAt.IsZero() {
		return errValidation
	}
	return nil
}

func writeFailure(w http.ResponseWriter, r *http.Request, code int, message string) {
	if message == "" {
		respond.JSON(w, r, code, struct{}{})
		return
	}
	respond.Error(w, r, code, message)
}
