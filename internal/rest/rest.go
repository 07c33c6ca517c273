package rest

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteError writes an ErrorResponse with the given status code.
func WriteError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Details: details}); err != nil {
		log.Errorf("failed to encode error response: %v", err)
	}
}

// FrontendHandler serves the built single-page client from a directory,
// falling back to the index document for client-side routes.
type FrontendHandler struct {
	root  string
	index string
}

func NewFrontendHandler(root, index string) *FrontendHandler {
	return &FrontendHandler{root: root, index: index}
}

func (h *FrontendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.root, filepath.Clean("/"+r.URL.Path))

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.ServeFile(w, r, filepath.Join(h.root, h.index))
		return
	}

	http.FileServer(http.Dir(h.root)).ServeHTTP(w, r)
}
