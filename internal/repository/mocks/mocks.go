package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"studentattendance/internal/attendance"
	"studentattendance/internal/student"
)

// StudentRepository is a mock for student.Repository.
type StudentRepository struct {
	mock.Mock
}

func (m *StudentRepository) Create(ctx context.Context, st *student.Student) error {
	args := m.Called(ctx, st)
	return args.Error(0)
}

func (m *StudentRepository) List(ctx context.Context, limit int) ([]student.Student, error) {
	args := m.Called(ctx, limit)
	if list, ok := args.Get(0).([]student.Student); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StudentRepository) ListAll(ctx context.Context) ([]student.Student, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]student.Student); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StudentRepository) Get(ctx context.Context, id int64) (*student.Student, error) {
	args := m.Called(ctx, id)
	if st, ok := args.Get(0).(*student.Student); ok {
		return st, args.Error(1)
	}
	return nil, args.Error(1)
}

// AttendanceRepository is a mock for attendance.Repository.
type AttendanceRepository struct {
	mock.Mock
}

func (m *AttendanceRepository) Insert(ctx context.Context, rec *attendance.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *AttendanceRepository) List(ctx context.Context, opts attendance.ListOptions) ([]attendance.Record, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]attendance.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AttendanceRepository) Get(ctx context.Context, id string) (*attendance.Record, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*attendance.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AttendanceRepository) Replace(ctx context.Context, rec *attendance.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *AttendanceRepository) Delete(ctx context.Context, id string) (*attendance.Record, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*attendance.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AttendanceRepository) CountByStudent(ctx context.Context, studentID int64) (int64, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).(int64), args.Error(1)
}
