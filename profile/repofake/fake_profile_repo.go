package fakeprofilerepo

import (
	"context"
	"sync"

	"github.com/jrsteele09/mentor-portal/profile"
	"github.com/pkg/errors"
)

// FakeProfileRepo is an in-memory profile backend
type FakeProfileRepo struct {
	mu      sync.RWMutex
	records map[string]profile.Record

	failWith error
}

var _ profile.Repo = (*FakeProfileRepo)(nil)

func NewFakeProfileRepo() *FakeProfileRepo {
	return &FakeProfileRepo{records: make(map[string]profile.Record)}
}

// SetFailure makes every call return err until it is cleared with nil
func (r *FakeProfileRepo) SetFailure(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}

func (r *FakeProfileRepo) GetRecord(_ context.Context, key string) (*profile.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.failWith != nil {
		return nil, r.failWith
	}
	rec, ok := r.records[key]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return copyRecord(rec), nil
}

func (r *FakeProfileRepo) PutRecord(_ context.Context, record *profile.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return r.failWith
	}
	if record == nil || record.UserID == "" {
		return errors.New("[FakeProfileRepo.PutRecord] user id is required")
	}
	r.records[record.UserID] = *copyRecord(*record)
	return nil
}

func copyRecord(rec profile.Record) *profile.Record {
	if rec.StudentDetails != nil {
		s := *rec.StudentDetails
		rec.StudentDetails = &s
	}
	if rec.MentorDetails != nil {
		m := *rec.MentorDetails
		rec.MentorDetails = &m
	}
	return &rec
}
