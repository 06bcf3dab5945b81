// Package jsonutil provides helper functions for JSON API responses.
//
// Every success body is an object carrying "success": true next to its
// payload; every failure body is {"error": message}.
package jsonutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
)

// MaxBodyBytes bounds JSON request bodies read by Decode.
const MaxBodyBytes = 1 << 20

// ErrInvalidBody is returned by Decode for any malformed JSON body.
var ErrInvalidBody = errors.New("Corps de requête JSON invalide")

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Success writes {"success": true, ...payload} with the given status.
//
// Usage:
//
//	jsonutil.Success(w, http.StatusOK, map[string]any{
//	    "message": "Message envoyé",
//	    "id":      c.Key(),
//	})
func Success(w http.ResponseWriter, status int, payload map[string]any) {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	JSON(w, status, body)
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, payload map[string]any) {
	Success(w, http.StatusOK, payload)
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, payload map[string]any) {
	Success(w, http.StatusCreated, payload)
}

// Error writes an error response with the given status code.
// The response body is {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// BadRequest writes a 400 Bad Request error response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 Unauthorized error response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Conflict writes a 409 Conflict error response.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, message)
}

// InternalError writes a 500 Internal Server Error response.
// Do not expose internal details to clients; log the actual error separately.
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}

// Decode reads one JSON object from the request body into v.
// Bodies larger than MaxBodyBytes, trailing data and malformed JSON all
// return ErrInvalidBody, whose message is safe to show to the caller.
//
// Usage:
//
//	var in contactInput
//	if err := jsonutil.Decode(w, r, &in); err != nil {
//	    jsonutil.BadRequest(w, err.Error())
//	    return
//	}
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return ErrInvalidBody
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return ErrInvalidBody
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrInvalidBody
	}
	return nil
}

// QueryBool parses a boolean query value. It returns nil when the value is
// absent or not one of true/false/1/0.
func QueryBool(r *http.Request, key string) *bool {
	var b bool
	switch strings.ToLower(strings.TrimSpace(query.Get(r, key))) {
	case "true", "1":
		b = true
	case "false", "0":
		b = false
	default:
		return nil
	}
	return &b
}

// QueryInt64 parses an integer query value, returning def when the value is
// absent or malformed. Range checks are left to the caller.
func QueryInt64(r *http.Request, key string, def int64) int64 {
	v := strings.TrimSpace(query.Get(r, key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
