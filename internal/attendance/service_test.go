package attendance_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"studentattendance/internal/attendance"
	"studentattendance/internal/queue"
	"studentattendance/internal/repository"
	"studentattendance/internal/repository/mocks"
)

type memRepo struct {
	mu      sync.Mutex
	next    int
	records map[string]attendance.Record
	order   []string
}

func newMemRepo() *memRepo {
	return &memRepo{records: map[string]attendance.Record{}}
}

func (r *memRepo) Insert(_ context.Context, rec *attendance.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	rec.ID = fmt.Sprintf("%024x", r.next)
	r.records[rec.ID] = *rec
	r.order = append(r.order, rec.ID)
	return nil
}

func (r *memRepo) List(_ context.Context, opts attendance.ListOptions) ([]attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Record
	for _, id := range r.order {
		rec, ok := r.records[id]
		if !ok || (opts.StudentID != nil && rec.StudentID != *opts.StudentID) {
			continue
		}
		if len(out) == opts.Limit {
			break
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *memRepo) Get(_ context.Context, id string) (*attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (r *memRepo) Replace(_ context.Context, rec *attendance.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; !ok {
		return repository.ErrNotFound
	}
	r.records[rec.ID] = *rec
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) (*attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.records, id)
	return &rec, nil
}

func (r *memRepo) CountByStudent(_ context.Context, studentID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rec := range r.records {
		if rec.StudentID == studentID {
			n++
		}
	}
	return n, nil
}

var fixedNow = func() time.Time { return time.Date(2024, 3, 5, 22, 30, 0, 0, time.UTC) }

func boolPtr(b bool) *bool { return &b }

func newService(repo attendance.Repository, events queue.Publisher) *attendance.Service {
	return attendance.NewService(repo, events, nil).WithClock(fixedNow)
}

func TestAttendanceService_CreateDefaults(t *testing.T) {
	svc := newService(newMemRepo(), nil)

	rec, err := svc.Create(context.Background(), attendance.Input{StudentID: 1})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, int64(1), rec.StudentID)
	require.Equal(t, "2024-03-05", rec.Day)
	require.True(t, rec.Present)
}

func TestAttendanceService_CreateAllowsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemRepo(), nil)

	in := attendance.Input{StudentID: 3, Day: "2024-01-02", Present: boolPtr(false)}
	a, err := svc.Create(ctx, in)
	require.NoError(t, err)
	b, err := svc.Create(ctx, in)
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
	require.False(t, a.Present)

	n, err := svc.CountByStudent(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestAttendanceService_CreateValidation(t *testing.T) {
	svc := newService(newMemRepo(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, attendance.Input{StudentID: 1, Day: "05/03/2024"})
	require.ErrorIs(t, err, attendance.ErrInvalidDay)
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = svc.Create(ctx, attendance.Input{StudentID: 1, Day: "2024-02-30"})
	require.ErrorIs(t, err, attendance.ErrInvalidDay)
}

func TestAttendanceService_CreateAcceptsAnyStudentID(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemRepo(), nil)

	for _, id := range []int64{0, -3, 424242} {
		rec, err := svc.Create(ctx, attendance.Input{StudentID: id})
		require.NoError(t, err)
		require.Equal(t, id, rec.StudentID)
	}
}

func TestAttendanceService_GetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemRepo(), nil)

	created, err := svc.Create(ctx, attendance.Input{StudentID: 1, Day: "2024-01-01"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)

	updated, err := svc.Update(ctx, created.ID, attendance.Input{StudentID: 2, Day: "2024-02-02", Present: boolPtr(false)})
	require.NoError(t, err)
	require.Equal(t, &attendance.Record{ID: created.ID, StudentID: 2, Day: "2024-02-02", Present: false}, updated)

	got, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, updated, got)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, attendance.ErrRecordNotFound)
	require.ErrorIs(t, svc.Delete(ctx, created.ID), attendance.ErrRecordNotFound)
}

func TestAttendanceService_UpdateAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemRepo(), nil)

	created, err := svc.Create(ctx, attendance.Input{StudentID: 1, Day: "2023-12-31", Present: boolPtr(false)})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, attendance.Input{StudentID: 1})
	require.NoError(t, err)
	require.Equal(t, "2024-03-05", updated.Day)
	require.True(t, updated.Present)
}

func TestAttendanceService_UpdateMissing(t *testing.T) {
	svc := newService(newMemRepo(), nil)
	_, err := svc.Update(context.Background(), "nope", attendance.Input{StudentID: 1})
	require.ErrorIs(t, err, attendance.ErrRecordNotFound)
}

func TestAttendanceService_ListFiltersByStudent(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemRepo(), nil)

	var want []string
	for i := 0; i < 3; i++ {
		rec, err := svc.Create(ctx, attendance.Input{StudentID: 7})
		require.NoError(t, err)
		want = append(want, rec.ID)
		_, err = svc.Create(ctx, attendance.Input{StudentID: 8})
		require.NoError(t, err)
	}
	require.NoError(t, svc.Delete(ctx, want[1]))
	want = append(want[:1], want[2])

	studentID := int64(7)
	list, err := svc.List(ctx, attendance.ListOptions{StudentID: &studentID})
	require.NoError(t, err)
	var got []string
	for _, rec := range list {
		require.Equal(t, int64(7), rec.StudentID)
		got = append(got, rec.ID)
	}
	require.ElementsMatch(t, want, got)

	all, err := svc.List(ctx, attendance.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 5)

	limited, err := svc.List(ctx, attendance.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestAttendanceService_ListEmptyIsNotNil(t *testing.T) {
	svc := newService(newMemRepo(), nil)
	list, err := svc.List(context.Background(), attendance.ListOptions{})
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestAttendanceService_PublishesChangeEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := queue.NewInMemory(8)
	svc := newService(newMemRepo(), q)

	rec, err := svc.Create(ctx, attendance.Input{StudentID: 4, Day: "2024-01-01"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, rec.ID, attendance.Input{StudentID: 4, Day: "2024-01-02"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, rec.ID))

	out, err := q.Consume(ctx)
	require.NoError(t, err)
	wantTypes := []string{attendance.EventCreated, attendance.EventUpdated, attendance.EventDeleted}
	for _, want := range wantTypes {
		select {
		case msg := <-out:
			require.Equal(t, want, msg.Type)
			var evt attendance.ChangeEvent
			require.NoError(t, msg.Decode(&evt))
			require.Equal(t, rec.ID, evt.RecordID)
			require.Equal(t, int64(4), evt.StudentID)
		case <-time.After(time.Second):
			t.Fatalf("missing %s event", want)
		}
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, queue.Message) error {
	return errors.New("redis down")
}

func TestAttendanceService_PublishFailureDoesNotFailWrite(t *testing.T) {
	svc := newService(newMemRepo(), failingPublisher{})
	rec, err := svc.Create(context.Background(), attendance.Input{StudentID: 1})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
}

func TestAttendanceService_StoreFailurePropagates(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("server selection timeout")
	repo := &mocks.AttendanceRepository{}
	repo.On("CountByStudent", ctx, int64(9)).Return(int64(0), boom)
	repo.On("Get", ctx, "abc").Return(nil, boom)

	svc := newService(repo, nil)
	_, err := svc.CountByStudent(ctx, 9)
	require.ErrorIs(t, err, boom)
	_, err = svc.Get(ctx, "abc")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, repository.ErrNotFound)
}
