package run

import (
	"errors"
	"fmt"
)

// Code categorizes a failed run.
type Code string

const (
	// CodeEmptyRoster means the group returned no usable members.
	CodeEmptyRoster Code = "EMPTY_ROSTER"

	// CodeFetchFailed means the roster or a channel's messages could not
	// be fetched. Nothing was persisted.
	CodeFetchFailed Code = "FETCH_FAILED"

	// CodePersistRead means prior streaks could not be read.
	CodePersistRead Code = "PERSIST_READ"

	// CodePersistWrite means the new snapshot could not be written.
	// Nothing was published.
	CodePersistWrite Code = "PERSIST_WRITE"

	// CodePublishFailed means the leaderboard could not be posted. The new
	// snapshot was already persisted.
	CodePublishFailed Code = "PUBLISH_FAILED"
)

// Error is a fatal run failure.
type Error struct {
	// Code identifies the failure category.
	Code Code

	// Stage names the operation that failed, e.g. "read streaks".
	Stage string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Stage)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is a run error with the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code Code) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// Persisted reports whether a failed run had already saved the new
// streaks. Only a publish failure happens after the write.
func Persisted(err error) bool {
	return IsCode(err, CodePublishFailed)
}

func fail(code Code, stage string, err error) *Error {
	return &Error{Code: code, Stage: stage, Err: err}
}
