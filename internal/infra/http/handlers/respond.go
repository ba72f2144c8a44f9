package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edumax/leads-service/internal/usecase"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "internal server error"

	var de *usecase.DomainError
	var nf *usecase.NotFoundError
	var te *usecase.TechnicalError

	switch {
	case errors.As(err, &de):
		status = http.StatusBadRequest
		code = de.Code
		message = de.Message
	case errors.As(err, &nf):
		status = http.StatusNotFound
		code = "NOT_FOUND"
		message = nf.Error()
	case errors.As(err, &te):
		code = te.Code
		message = te.Message
		if te.Code == usecase.CodeExternalService {
			status = http.StatusBadGateway
		}
	}

	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func badRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: message, Code: usecase.CodeValidation})
}
