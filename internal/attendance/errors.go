package attendance

import "studentattendance/internal/repository"

var (
	// ErrRecordNotFound indicates the record id is absent.
	ErrRecordNotFound = repository.NotFound("Record not found")
	// ErrInvalidDay indicates a day that is not a YYYY-MM-DD calendar date.
	ErrInvalidDay = repository.Invalid("day must be a YYYY-MM-DD date")
)
