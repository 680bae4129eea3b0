package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"shop-api/internal/middleware"
	"shop-api/internal/model"
	"shop-api/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, model.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// writeError maps err onto the failure envelope. Unclassified errors are
// logged and answered with a generic 500 so no internal detail leaks.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrUserAlreadyExists) {
		status = http.StatusBadRequest
		body.Code = "ALREADY_EXISTS"
		body.Message = "User already exists"
	} else if errors.Is(err, model.ErrInvalidCredentials) {
		status = http.StatusUnauthorized
		body.Code = "INVALID_CREDENTIALS"
		body.Message = "invalid credentials"
	} else if errors.Is(err, model.ErrUnauthorized) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "unauthorized access"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "forbidden access"
	} else if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrUserNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Not found"
	} else if errors.Is(err, model.ErrInvalidID) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "invalid id"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	} else {
		middleware.LoggerFromContext(r.Context()).Error("unhandled error", "error", err.Error(), "path", r.URL.Path)
	}

	writeJSON(w, status, model.APIResponse{
		Success: false,
		Message: body.Message,
		Error:   body,
	})
}

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return apierror.New("PAYLOAD_TOO_LARGE", "request body too large", "", http.StatusRequestEntityTooLarge)
		}
		return apierror.BadRequest("invalid JSON body", "")
	}
	return nil
}

func RouteNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, apierror.NotFound("route not found", r.URL.Path))
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, apierror.New("METHOD_NOT_ALLOWED", "method not allowed", r.Method, http.StatusMethodNotAllowed))
}
