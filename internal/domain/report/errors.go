package report

import "errors"

var (
	// ErrReportNotFound indicates the report doesn't exist in the inbox.
	ErrReportNotFound = errors.New("report not found")
	// ErrInvalidInput indicates a report without an owner or kind.
	ErrInvalidInput = errors.New("invalid report input")
)
