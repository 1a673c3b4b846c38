package httpapi

import (
	"encoding/json"
	"net/http"

	"servingd/pkg/types"
)

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg})
}

// writeInvalidRequest writes the admission rejection for a body that failed
// to decode or validate. The error text is fixed; only details vary.
func writeInvalidRequest(w http.ResponseWriter, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: "Invalid request format", Details: details})
}
