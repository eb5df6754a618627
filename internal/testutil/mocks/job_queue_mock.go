package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/neurobank/internal/worker"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) Submit(job worker.Job) error {
	args := m.Called(job)
	return args.Error(0)
}
