package storage

import "errors"

// ErrCorruptState is returned when a persisted collection cannot be decoded.
// Stored data is never reset on this error.
var ErrCorruptState = errors.New("persisted state is corrupt")

const (
	KeyAccounts   = "users"
	KeyStudents   = "students"
	KeyAttendance = "attendance"
)
