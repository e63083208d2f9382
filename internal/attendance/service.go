package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"studentattendance/internal/metrics"
	"studentattendance/internal/queue"
	"studentattendance/internal/repository"
)

// DefaultListLimit caps List when the caller gives no limit.
const DefaultListLimit = 100

// Service coordinates the attendance log and its change events.
type Service struct {
	repo   Repository
	events queue.Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a service backed by a repository. events may be nil,
// in which case changes are not published.
func NewService(repo Repository, events queue.Publisher, logger *slog.Logger) *Service {
	if events == nil {
		events = queue.Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, events: events, logger: logger, now: time.Now}
}

// WithClock overrides the clock used for the default day.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create records a new attendance event. There is no uniqueness check, so
// several records per student and day are allowed, and the student id is
// stored as given without consulting the directory. Only a malformed day is
// rejected.
func (s *Service) Create(ctx context.Context, in Input) (*Record, error) {
	rec, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("inserting record: %w", err)
	}
	s.publish(ctx, EventCreated, rec)
	return rec, nil
}

// List returns records, filtered to one student when opts.StudentID is set.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	records, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Get fetches a record by id.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "getting record")
	}
	return rec, nil
}

// Update replaces student id, day and present of an existing record and
// returns the stored result.
func (s *Service) Update(ctx context.Context, id string, in Input) (*Record, error) {
	rec, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	if err := s.repo.Replace(ctx, rec); err != nil {
		return nil, mapNotFound(err, "updating record")
	}
	s.publish(ctx, EventUpdated, rec)
	return rec, nil
}

// Delete removes a record permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	rec, err := s.repo.Delete(ctx, id)
	if err != nil {
		return mapNotFound(err, "deleting record")
	}
	s.publish(ctx, EventDeleted, rec)
	return nil
}

// CountByStudent returns the live number of records for a student,
// regardless of day or presence.
func (s *Service) CountByStudent(ctx context.Context, studentID int64) (int64, error) {
	n, err := s.repo.CountByStudent(ctx, studentID)
	if err != nil {
		return 0, fmt.Errorf("counting records for student %d: %w", studentID, err)
	}
	return n, nil
}

func (s *Service) normalize(in Input) (*Record, error) {
	day := in.Day
	if day == "" {
		day = s.now().Format(DayLayout)
	} else {
		parsed, err := time.Parse(DayLayout, day)
		if err != nil {
			return nil, ErrInvalidDay
		}
		day = parsed.Format(DayLayout)
	}
	present := true
	if in.Present != nil {
		present = *in.Present
	}
	return &Record{StudentID: in.StudentID, Day: day, Present: present}, nil
}

func (s *Service) publish(ctx context.Context, typ string, rec *Record) {
	msg, err := queue.NewMessage(typ, ChangeEvent{
		RecordID:  rec.ID,
		StudentID: rec.StudentID,
		Day:       rec.Day,
		Present:   rec.Present,
		At:        s.now().UTC(),
	})
	if err == nil {
		err = s.events.Publish(ctx, msg)
	}
	if err != nil {
		metrics.EventsPublished.WithLabelValues(typ, "error").Inc()
		s.logger.Warn("publish attendance event failed", "type", typ, "record_id", rec.ID, "error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues(typ, "ok").Inc()
}

func mapNotFound(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRecordNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
