package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"studentattendance/internal/metrics"
)

// Service joins the student directory with the attendance log.
type Service struct {
	students    StudentLister
	counter     AttendanceCounter
	fanoutLimit int
	logger      *slog.Logger
}

// NewService creates a report service. fanoutLimit bounds the number of
// in-flight count queries; zero or less launches all of them at once.
func NewService(students StudentLister, counter AttendanceCounter, fanoutLimit int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{students: students, counter: counter, fanoutLimit: fanoutLimit, logger: logger}
}

// Build returns one row per student with a freshly counted attendance total.
//
// Counts run concurrently and fail fast: the first failing count cancels the
// rest and fails the whole report. Attendance records whose student id is
// not in the directory are never counted, since the join iterates students.
func (s *Service) Build(ctx context.Context) ([]Row, error) {
	start := time.Now()
	rows, err := s.build(ctx)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ReportBuildDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return rows, err
}

func (s *Service) build(ctx context.Context) ([]Row, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	if len(students) == 0 {
		return nil, ErrNoStudents
	}
	metrics.ReportRosterSize.Observe(float64(len(students)))

	rows := make([]Row, len(students))
	g, gctx := errgroup.WithContext(ctx)
	if s.fanoutLimit > 0 {
		g.SetLimit(s.fanoutLimit)
	}
	for i, st := range students {
		i, st := i, st
		g.Go(func() error {
			n, err := s.counter.CountByStudent(gctx, st.ID)
			if err != nil {
				metrics.CountQueryFailures.Inc()
				return fmt.Errorf("counting attendance for student %d: %w", st.ID, err)
			}
			rows[i] = Row{
				StudentID:       st.ID,
				FullName:        st.FullName,
				Email:           st.Email,
				AttendanceCount: n,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("attendance report built", "students", len(rows))
	return rows, nil
}
