package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kevinpasricha/team-to-doers/internal/auth"
	"github.com/kevinpasricha/team-to-doers/internal/database"
)

type todoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
}

// validate checks the fields shared by create and update. Returns a
// user-facing message, empty when the request is valid.
func (req *todoRequest) validate() string {
	if req.Title == "" || req.Description == "" || req.DueDate == "" {
		return "Missing fields"
	}
	if _, err := time.Parse("2006-01-02", req.DueDate); err != nil {
		return "Invalid due date"
	}
	return ""
}

func (api *Api) ListTodosHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "Not authenticated")
		return
	}

	todos, err := api.Store.ListTodos(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database Error")
		return
	}

	writeJSON(w, http.StatusOK, todos)
}

func (api *Api) CreateTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "Not authenticated")
		return
	}

	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	todo, err := api.Store.CreateTodo(userID, req.Title, req.Description, req.DueDate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database Error")
		return
	}

	writeJSON(w, http.StatusCreated, todo)
}

func (api *Api) UpdateTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "Not authenticated")
		return
	}

	todoID, err := strconv.ParseInt(chi.URLParam(r, "todoID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}

	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	todo, err := api.Store.UpdateTodo(todoID, userID, req.Title, req.Description, req.DueDate)
	if err != nil {
		// Absent and not-owned are deliberately the same answer
		if errors.Is(err, database.ErrTodoNotFound) {
			writeError(w, http.StatusNotFound, "Todo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database Error")
		return
	}

	writeJSON(w, http.StatusOK, todo)
}

func (api *Api) DeleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "Not authenticated")
		return
	}

	todoID, err := strconv.ParseInt(chi.URLParam(r, "todoID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}

	if err := api.Store.DeleteTodo(todoID, userID); err != nil {
		if errors.Is(err, database.ErrTodoNotFound) {
			writeError(w, http.StatusNotFound, "Todo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database Error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
