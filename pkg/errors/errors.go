package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeTooManyRequests     = "TOO_MANY_REQUESTS"
	CodeInternal            = "INTERNAL_ERROR"
	CodeCapacityExceeded    = "CAPACITY_EXCEEDED"
	CodeNoMissionsAvailable = "NO_MISSIONS_AVAILABLE"
	CodeInsufficientCatalog = "INSUFFICIENT_CATALOG"
	CodePendingMissions     = "PENDING_MISSIONS_EXIST"
	CodeNoActiveMissions    = "NO_ACTIVE_MISSIONS"
	CodeMissionNotFound     = "MISSION_NOT_FOUND"
	CodeNotCompletable      = "NOT_COMPLETABLE"
	CodeNotEligible         = "NOT_ELIGIBLE"
	CodeStorageUnavailable  = "STORAGE_UNAVAILABLE"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, err)
}

func BadRequest(message string, err error) *AppError {
	return New(CodeBadRequest, message, http.StatusBadRequest, err)
}

func Unauthorized(message string, err error) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized, err)
}

func Forbidden(message string, err error) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden, err)
}

func Internal(message string, err error) *AppError {
	return New(CodeInternal, message, http.StatusInternalServerError, err)
}

func TooManyRequests(message string) *AppError {
	return New(CodeTooManyRequests, message, http.StatusTooManyRequests, nil)
}

// Mission engine kinds

func CapacityExceeded(limit int) *AppError {
	return New(CodeCapacityExceeded, fmt.Sprintf("You already have %d active missions", limit), http.StatusConflict, nil)
}

func NoMissionsAvailable() *AppError {
	return New(CodeNoMissionsAvailable, "No missions available to assign", http.StatusNotFound, nil)
}

func InsufficientCatalog(need int) *AppError {
	return New(CodeInsufficientCatalog, fmt.Sprintf("At least %d missions are required in the catalog", need), http.StatusConflict, nil)
}

func PendingMissionsExist() *AppError {
	return New(CodePendingMissions, "Complete or clear your current missions first", http.StatusConflict, nil)
}

func NoActiveMissions() *AppError {
	return New(CodeNoActiveMissions, "You have no active missions", http.StatusNotFound, nil)
}

func MissionNotFound(missionID string) *AppError {
	return New(CodeMissionNotFound, fmt.Sprintf("Mission %s not found", missionID), http.StatusNotFound, nil)
}

func NotCompletable(missionID string) *AppError {
	return New(CodeNotCompletable, fmt.Sprintf("Mission %s cannot be claimed yet", missionID), http.StatusBadRequest, nil)
}

func NotEligible(message string) *AppError {
	return New(CodeNotEligible, message, http.StatusForbidden, nil)
}

func StorageUnavailable(action string, err error) *AppError {
	return New(CodeStorageUnavailable, fmt.Sprintf("Failed to %s", action), http.StatusServiceUnavailable, err)
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
