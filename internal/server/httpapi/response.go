package httpapi

import (
	"encoding/json"
	"net/http"
)

// Generic messages. Nothing more specific ever reaches the client.
const (
	msgCredentialsRequired = "Email and password are required"
	msgInvalidEmail        = "Invalid email address"
	msgInvalidBody         = "Invalid request body"
	msgPasswordTooLong     = "Password is too long"
	msgEmailTaken          = "Email already registered"
	msgInvalidCredentials  = "Incorrect email or password"
	msgUnauthenticated     = "Not authenticated"
	msgInternal            = "Internal Server Error"
	msgNotFound            = "Not Found"
	msgMethodNotAllowed    = "Method Not Allowed"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	_ = writeJSON(w, status, errorResponse{Error: message})
}
