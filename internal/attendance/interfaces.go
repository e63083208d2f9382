package attendance

import "context"

// Repository provides persistence for attendance records.
type Repository interface {
	Insert(ctx context.Context, rec *Record) error
	List(ctx context.Context, opts ListOptions) ([]Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Replace(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) (*Record, error)
	CountByStudent(ctx context.Context, studentID int64) (int64, error)
}
