package rest

import (
	"encoding/json"
	"net/http"

	"github.com/dtroode/authcore/internal/api/apierror"
)

type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError renders err as {"detail": ...} with the mapped status code.
func writeError(w http.ResponseWriter, err error) {
	apiErr := apierror.FromError(err)
	if apiErr.HTTPStatus == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, apiErr.HTTPStatus, detailResponse{Detail: apiErr.Message})
}
