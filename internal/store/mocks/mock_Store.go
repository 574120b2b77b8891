// Package mocks provides test doubles for the record store.
package mocks

import (
	"context"

	model "github.com/sells-group/company-profiler/internal/model"
	store "github.com/sells-group/company-profiler/internal/store"
	mock "github.com/stretchr/testify/mock"
)

// MockStore is a mock type for the Store interface.
type MockStore struct {
	mock.Mock
}

// SaveRecord provides a mock function with given fields: ctx, rec
func (_m *MockStore) SaveRecord(ctx context.Context, rec model.Record) (string, error) {
	ret := _m.Called(ctx, rec)

	if len(ret) == 0 {
		panic("no return value specified for SaveRecord")
	}

	if rf, ok := ret.Get(0).(func(context.Context, model.Record) (string, error)); ok {
		return rf(ctx, rec)
	}
	return ret.String(0), ret.Error(1)
}

// LatestByURL provides a mock function with given fields: ctx, sourceURL
func (_m *MockStore) LatestByURL(ctx context.Context, sourceURL string) (*model.Record, error) {
	ret := _m.Called(ctx, sourceURL)

	if len(ret) == 0 {
		panic("no return value specified for LatestByURL")
	}

	var r0 *model.Record
	if rf, ok := ret.Get(0).(func(context.Context, string) (*model.Record, error)); ok {
		return rf(ctx, sourceURL)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Record)
	}
	return r0, ret.Error(1)
}

// ListRecords provides a mock function with given fields: ctx, filter
func (_m *MockStore) ListRecords(ctx context.Context, filter store.RecordFilter) ([]store.StoredRecord, error) {
	ret := _m.Called(ctx, filter)

	if len(ret) == 0 {
		panic("no return value specified for ListRecords")
	}

	var r0 []store.StoredRecord
	if rf, ok := ret.Get(0).(func(context.Context, store.RecordFilter) ([]store.StoredRecord, error)); ok {
		return rf(ctx, filter)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]store.StoredRecord)
	}
	return r0, ret.Error(1)
}

// Migrate provides a mock function with given fields: ctx
func (_m *MockStore) Migrate(ctx context.Context) error {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Migrate")
	}
	return ret.Error(0)
}

// Close provides a mock function with no fields
func (_m *MockStore) Close() error {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}
	return ret.Error(0)
}

// NewMockStore creates a new instance of MockStore.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	mock := &MockStore{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

var _ store.Store = (*MockStore)(nil)
