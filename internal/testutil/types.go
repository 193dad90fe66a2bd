package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/junioryono/saber"
)

// ErrConstructor is returned by failing test recipes.
var ErrConstructor = errors.New("constructor error")

// TestService is a basic test service with a unique ID per instance.
type TestService struct {
	ID   string
	Data string
}

// NewTestService creates a new test service
func NewTestService() *TestService {
	return &TestService{ID: uuid.NewString(), Data: "test"}
}

// TestLogger is a test logger interface
type TestLogger interface {
	Log(msg string)
	Logs() []string
}

// TestLoggerImpl implements TestLogger
type TestLoggerImpl struct {
	mu   sync.Mutex
	logs []string
}

func NewTestLogger() TestLogger {
	return &TestLoggerImpl{}
}

func (l *TestLoggerImpl) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = append(l.logs, msg)
}

func (l *TestLoggerImpl) Logs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.logs...)
}

// TestDatabase is a fake database handle.
type TestDatabase struct {
	DSN    string
	Logger TestLogger
}

// TestHandler receives members after construction.
type TestHandler struct {
	Service  *TestService
	Database *TestDatabase
}

// CountingProvider counts how often its recipe runs.
type CountingProvider struct {
	calls atomic.Int64
	build func() (any, error)
}

// NewCountingProvider returns a provider building values with build.
func NewCountingProvider(build func() (any, error)) *CountingProvider {
	return &CountingProvider{build: build}
}

// Provide implements saber.Provider.
func (p *CountingProvider) Provide() (any, error) {
	p.calls.Add(1)
	return p.build()
}

// Calls returns the number of Provide calls so far.
func (p *CountingProvider) Calls() int {
	return int(p.calls.Load())
}

var _ saber.Provider = (*CountingProvider)(nil)
