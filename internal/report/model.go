package report

// Row is one student joined with the live count of their attendance records.
type Row struct {
	StudentID       int64  `json:"student_id"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	AttendanceCount int64  `json:"attendance_count"`
}
