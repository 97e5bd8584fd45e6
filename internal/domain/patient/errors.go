package patient

import "errors"

var (
	ErrPatientNotFound        = errors.New("patient not found")
	ErrPatientHasAppointments = errors.New("patient still has appointments")
	ErrInvalidDateOfBirth     = errors.New("date of birth cannot be in the future")
	ErrUnparseableDateOfBirth = errors.New("date of birth must be YYYY-MM-DD")
	ErrInvalidDeletePolicy    = errors.New("delete policy must be one of restrict, cascade, detach")
)
