package respond

import (
	"encoding/json"
	"io"
	"net/http"
)

// Envelope is the error body the task service speaks in both directions.
type Envelope struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, Envelope{Error: message})
}

// ReadError extracts the message of an error envelope. It returns "" when the
// body is empty, not JSON, or carries no "error" string.
func ReadError(body io.Reader) string {
	var env Envelope
	if err := json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(&env); err != nil {
		return ""
	}
	return env.Error
}
