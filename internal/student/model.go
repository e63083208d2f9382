package student

// Student is an identity record in the directory. Records are immutable once
// created.
type Student struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}
