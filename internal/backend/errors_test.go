package backend

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates(t *testing.T) {
	netErr := &NetworkError{Op: "query", Resource: "calls", Err: errors.New("dial tcp: refused")}
	nfErr := &NotFoundError{Resource: "system_messages", ID: "m1"}
	valErr := &ValidationError{Field: "pageSize", Reason: "must be positive"}
	openErr := &CircuitOpenError{Endpoint: "calls", RetryAt: time.Now()}

	assert.True(t, IsNetwork(netErr))
	assert.True(t, IsNotFound(nfErr))
	assert.True(t, IsValidation(valErr))
	assert.True(t, IsCircuitOpen(openErr))

	// предикаты не пересекаются
	assert.False(t, IsNetwork(nfErr))
	assert.False(t, IsNotFound(valErr))
	assert.False(t, IsValidation(openErr))
	assert.False(t, IsCircuitOpen(netErr))
}

func TestErrorPredicates_Wrapped(t *testing.T) {
	inner := &NotFoundError{Resource: "leads", ID: "x"}
	wrapped := fmt.Errorf("load lead: %w", inner)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNetwork(wrapped))
}

func TestCountsAsFailure(t *testing.T) {
	assert.False(t, CountsAsFailure(nil))
	assert.False(t, CountsAsFailure(&NotFoundError{Resource: "calls"}))
	assert.False(t, CountsAsFailure(&ValidationError{Field: "page"}))
	assert.False(t, CountsAsFailure(&CircuitOpenError{Endpoint: "calls"}))

	assert.True(t, CountsAsFailure(&NetworkError{Op: "query", Resource: "calls", Err: errors.New("timeout")}))
	// неизвестные ошибки тоже считаются отказом
	assert.True(t, CountsAsFailure(errors.New("boom")))
}

func TestNetworkError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &NetworkError{Op: "insert", Resource: "leads", Err: cause}
	assert.ErrorIs(t, err, cause)
}
