package hospital

import "errors"

var (
	ErrAlertNotFound      = errors.New("alert not found")
	ErrBedNotFound        = errors.New("bed not found")
	ErrBedOccupied        = errors.New("bed is occupied")
	ErrWardNotFound       = errors.New("ward not found")
	ErrNurseNotFound      = errors.New("nurse not found")
	ErrPatientNotFound    = errors.New("patient not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWardMismatch       = errors.New("records belong to different wards")
	ErrUsernameTaken      = errors.New("username already in use")
)
