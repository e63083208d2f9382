package report

import "studentattendance/internal/repository"

// ErrNoStudents is returned when the directory is empty; an empty roster
// yields no report rather than an empty one.
var ErrNoStudents = repository.NotFound("No students found")
