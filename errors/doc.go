// Package errors provides the structured error type shared by every exportkit
// package. Each failure mode of scanning, binding and resolution has its own
// ErrorCode so callers can branch with errors.Is against the sentinel values
// (ErrExportNotFound, ErrAmbiguousExport, ...) without string matching.
//
// Errors raised by a backend container itself are never converted into an
// AppError; they propagate as the backend produced them.
package errors
