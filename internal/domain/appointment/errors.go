package appointment

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrInvalidStatus       = errors.New("status must be one of planifié, confirmé, annulé, terminé")
	ErrInvalidDuration     = errors.New("duration must look like \"<n> minutes\" or \"<n> hours\"")
	ErrInvalidStart        = errors.New("start must be a date-time such as 2026-03-02T09:30")
	ErrInvalidTimeRange    = errors.New("end must be at least one minute after start")
	ErrInvalidView         = errors.New("view must be one of day, 3-day, week")
)
