package student

import "studentattendance/internal/repository"

var (
	// ErrStudentNotFound indicates no student has the requested id.
	ErrStudentNotFound = repository.NotFound("Student not found")
	// ErrEmailExists indicates the email is already registered.
	ErrEmailExists = repository.Conflict("Email already exists")
	// ErrInvalidInput indicates invalid student input.
	ErrInvalidInput = repository.Invalid("full_name and email are required")
)
