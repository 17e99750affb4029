package service

import (
	"errors"
	"fmt"

	"github.com/maheshrc27/contentflow/internal/repository"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	RequestTimeout      = 408
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrEmptyBatch        = errors.New("batch contains no decisions")
	ErrUnknownPlatform   = errors.New("unknown platform")
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTime       = errors.New("time must be HH:MM")
	ErrUnsupportedFile   = errors.New("unsupported file type")
	ErrTokenLimit        = errors.New("portal token limit reached")
	ErrUnauthorized      = errors.New("missing or invalid identity")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid approval transition")
	ErrTimeLocked        = errors.New("time is locked by an applied global time")
	ErrAlreadyScheduled  = errors.New("post is already scheduled")
	ErrNotReschedulable  = errors.New("post kind cannot be rescheduled")
	ErrNotPublishable    = errors.New("post is not publishable")
	ErrNotApprovable     = errors.New("post kind cannot be approved")
	ErrInvalidDropTarget = errors.New("drop target does not resolve to a day")
	ErrStoreTimeout      = errors.New("backing store timed out")
)

type ErrorInfo struct {
	Status int
	Code   string
}

var ErrorMap = map[error]ErrorInfo{
	ErrInvalidRequest:    {BadRequest, "invalid_request"},
	ErrEmptyBatch:        {BadRequest, "empty_batch"},
	ErrUnknownPlatform:   {BadRequest, "unknown_platform"},
	ErrInvalidDate:       {BadRequest, "invalid_date"},
	ErrInvalidTime:       {BadRequest, "invalid_time"},
	ErrUnsupportedFile:   {BadRequest, "unsupported_file"},
	ErrTokenLimit:        {BadRequest, "token_limit"},
	ErrInvalidDropTarget: {BadRequest, "invalid_drop_target"},
	ErrUnauthorized:      {Unauthorized, "unauthorized"},
	ErrForbidden:         {Forbidden, "forbidden"},
	ErrNotFound:          {NotFound, "not_found"},
	ErrStoreTimeout:      {RequestTimeout, "store_timeout"},
	ErrInvalidTransition: {Conflict, "invalid_transition"},
	ErrTimeLocked:        {Conflict, "time_locked"},
	ErrAlreadyScheduled:  {Conflict, "already_scheduled"},
	ErrNotReschedulable:  {Conflict, "not_reschedulable"},
	ErrNotPublishable:    {Conflict, "not_publishable"},
	ErrNotApprovable:     {Conflict, "not_approvable"},
}

var internalError = ErrorInfo{InternalServerError, "internal"}

// Classify maps err to its status and code. Errors outside ErrorMap are
// internal.
func Classify(err error) ErrorInfo {
	for sentinel, info := range ErrorMap {
		if errors.Is(err, sentinel) {
			return info
		}
	}
	if repository.IsTimeout(err) {
		return ErrorMap[ErrStoreTimeout]
	}
	return internalError
}

// storeErr tags repository timeouts with ErrStoreTimeout.
func storeErr(op string, err error) error {
	if repository.IsTimeout(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrStoreTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
