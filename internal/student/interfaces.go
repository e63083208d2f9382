package student

import "context"

// Repository provides persistence for students.
type Repository interface {
	Create(ctx context.Context, st *Student) error
	List(ctx context.Context, limit int) ([]Student, error)
	ListAll(ctx context.Context) ([]Student, error)
	Get(ctx context.Context, id int64) (*Student, error)
}
