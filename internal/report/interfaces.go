package report

import (
	"context"

	"studentattendance/internal/student"
)

// StudentLister supplies the full, unlimited roster.
type StudentLister interface {
	ListAll(ctx context.Context) ([]student.Student, error)
}

// AttendanceCounter supplies the live attendance count of one student.
type AttendanceCounter interface {
	CountByStudent(ctx context.Context, studentID int64) (int64, error)
}
