// Package handler maps the REST surface of the balcao API onto actions.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

var errMalformedBody = errors.New("request body is not valid JSON")

// Handler serves the fallback routes shared by the whole API.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, ErrorResponse{Error: "resource not found", Code: CodeNotFound})
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed", Code: CodeMethodNotAllowed})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header,
// or "" when the header is missing or uses another scheme.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// readBody reads the request body. An empty body is returned as nil. The
// body is not parsed here: actions verify the caller before they look at
// the payload.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	return body, nil
}

// withID sets the "id" key of a JSON object body, so the id in the URL wins
// over any id the client put in the payload. A body that is not an object
// is returned untouched for the action's schema to reject.
func withID(body []byte, id string) []byte {
	fields := map[string]json.RawMessage{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
			return body
		}
	}
	encoded, _ := json.Marshal(id)
	fields["id"] = encoded
	raw, err := json.Marshal(fields)
	if err != nil {
		return body
	}
	return raw
}

// queryInput turns query parameters into a JSON object, keeping the first
// value of each key.
func queryInput(r *http.Request) ([]byte, error) {
	query := r.URL.Query()
	if len(query) == 0 {
		return nil, nil
	}
	fields := make(map[string]string, len(query))
	for key, values := range query {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	return json.Marshal(fields)
}
