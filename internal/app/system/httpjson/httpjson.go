// internal/app/system/httpjson/httpjson.go

// Package httpjson holds the JSON request/response helpers shared by the
// API handlers so every endpoint encodes errors and bodies the same way.
package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Request bodies are small structured documents; anything bigger than
// this is malformed or hostile.
const maxBodyBytes = 1 << 20

// Decode reads the request body into dst. A missing body is an error:
// every endpoint that calls Decode requires one.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// Respond writes v as the JSON response body with the given status.
func Respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body: { "message": "..." }.
func Error(w http.ResponseWriter, status int, message string) {
	Respond(w, status, map[string]string{"message": message})
}
