package handler

import (
	"encoding/json"
	"net/http"

	"user-service/pkg/xerrors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeUserError maps the registration error taxonomy onto HTTP statuses:
// invalid input 400, conflicts 409, everything else 500.
func writeUserError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch xerrors.KindOf(err) {
	case xerrors.KindInvalidInput:
		status = http.StatusBadRequest
	case xerrors.KindConflict:
		status = http.StatusConflict
	}
	writeError(w, status, xerrors.CodeOf(err))
}
