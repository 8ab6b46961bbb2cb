package mcp

import (
	"errors"
	"fmt"

	"github.com/joaodperes/stardust/internal/domain/allocation"
	"github.com/joaodperes/stardust/internal/domain/galaxy"
	"github.com/joaodperes/stardust/internal/domain/mission"
	"github.com/joaodperes/stardust/internal/domain/planet"
	"github.com/joaodperes/stardust/internal/domain/report"
	"github.com/joaodperes/stardust/internal/repository"
)

// Error codes returned to clients.
const (
	CodeUnknownMethod   = "UNKNOWN_METHOD"
	CodeInvalidParams   = "INVALID_PARAMS"
	CodeValidation      = "VALIDATION_FAILED"
	CodePlanetNotFound  = "PLANET_NOT_FOUND"
	CodeAlreadyAssigned = "ALREADY_ASSIGNED"
	CodeNameTaken       = "NAME_TAKEN"
	CodeMissionNotFound = "MISSION_NOT_FOUND"
	CodeNotCancelable   = "NOT_CANCELABLE"
	CodeReportNotFound  = "REPORT_NOT_FOUND"
	CodeGalaxyExhausted = "GALAXY_EXHAUSTED"
	CodeConflict        = "CONFLICT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL"
)

// APIError represents an error response on both the MCP and JSON-RPC surfaces.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to API error codes. It returns nil for errors
// it doesn't recognise.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, mission.ErrValidation):
		return &APIError{Code: CodeValidation, Message: err.Error(), RecoveryHint: "Adjust the fleet, target or cargo and retry"}
	case errors.Is(err, galaxy.ErrInvalidCoordinate):
		return &APIError{Code: CodeInvalidParams, Message: err.Error(), RecoveryHint: "Use a target like 12:7 inside the galaxy"}
	case errors.Is(err, planet.ErrPlanetNotFound):
		return &APIError{Code: CodePlanetNotFound, Message: "planet not found", RecoveryHint: "Call assign_home_planet first"}
	case errors.Is(err, planet.ErrAlreadyAssigned):
		return &APIError{Code: CodeAlreadyAssigned, Message: "home planet already assigned", RecoveryHint: "Use get_planet"}
	case errors.Is(err, planet.ErrNameTaken):
		return &APIError{Code: CodeNameTaken, Message: "planet name already taken", RecoveryHint: "Pick another name"}
	case errors.Is(err, planet.ErrInvalidInput), errors.Is(err, allocation.ErrInvalidKey):
		return &APIError{Code: CodeInvalidParams, Message: err.Error()}
	case errors.Is(err, mission.ErrMissionNotFound):
		return &APIError{Code: CodeMissionNotFound, Message: "mission not found", RecoveryHint: "Call list_missions for active ids"}
	case errors.Is(err, mission.ErrNotCancelable):
		return &APIError{Code: CodeNotCancelable, Message: "mission can no longer be cancelled", RecoveryHint: "Wait for the fleet to return"}
	case errors.Is(err, report.ErrReportNotFound):
		return &APIError{Code: CodeReportNotFound, Message: "report not found", RecoveryHint: "Call list_reports for report ids"}
	case errors.Is(err, allocation.ErrExhausted):
		return &APIError{Code: CodeGalaxyExhausted, Message: "no free coordinate found", RecoveryHint: "Retry later"}
	case errors.Is(err, repository.ErrConflict):
		return &APIError{Code: CodeConflict, Message: "state changed concurrently", RecoveryHint: "Retry the command"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
