package middleware

import (
	"encoding/json"
	"net/http"

	"shop-api/internal/model"
	"shop-api/pkg/apierror"
)

func jsonEncode(w http.ResponseWriter, value any) error {
	return json.NewEncoder(w).Encode(value)
}

func writeAPIError(w http.ResponseWriter, err *apierror.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Message: err.Message,
		Error: &model.APIError{
			Code:    err.Code,
			Message: err.Message,
			Details: err.Details,
		},
	})
}
