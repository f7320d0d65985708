package handler

import "github.com/indentflow/backend/internal/interfaces/http/dto"

// APIResponse is the response envelope as it appears in the OpenAPI
// docs, with the data field typed per endpoint.
// @Description Response envelope with a typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the envelope for failed requests.
// @Description Error envelope
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// SuccessResponse is the envelope for endpoints that return no data.
// @Description Bare success envelope
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// CountData carries a single count for the stats endpoints.
// @Description Count payload
type CountData struct {
	Count int64 `json:"count"`
}
