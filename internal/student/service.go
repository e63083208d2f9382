package student

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"studentattendance/internal/repository"
)

// DefaultListLimit caps List when the caller gives no limit.
const DefaultListLimit = 100

// Service handles student directory operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new student service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// CreateRequest defines student creation inputs.
type CreateRequest struct {
	FullName string
	Email    string
}

// Create registers a student. A duplicate email fails with ErrEmailExists and
// leaves the directory unchanged.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Student, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(req.Email)
	if fullName == "" || email == "" {
		return nil, ErrInvalidInput
	}

	st := &Student{FullName: fullName, Email: email}
	if err := s.repo.Create(ctx, st); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("creating student: %w", err)
	}

	s.logger.Info("student created", "student_id", st.ID)
	return st, nil
}

// List returns up to limit students ordered by id. A non-positive limit
// means DefaultListLimit.
func (s *Service) List(ctx context.Context, limit int) ([]Student, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	students, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	if students == nil {
		students = []Student{}
	}
	return students, nil
}

// ListAll returns the whole roster ordered by id.
func (s *Service) ListAll(ctx context.Context) ([]Student, error) {
	students, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing all students: %w", err)
	}
	return students, nil
}

// Get fetches a student by id.
func (s *Service) Get(ctx context.Context, id int64) (*Student, error) {
	st, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("getting student: %w", err)
	}
	return st, nil
}
