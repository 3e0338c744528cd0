package pgerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "exclusion", err: &pq.Error{Code: CodeExclusionViolation}, want: ErrExclusionViolation},
		{name: "serialization", err: &pq.Error{Code: CodeSerializationFailure}, want: ErrSerializationFailure},
		{name: "deadlock", err: &pq.Error{Code: CodeDeadlockDetected}, want: ErrSerializationFailure},
		{name: "unique wrapped", err: fmt.Errorf("insert: %w", &pq.Error{Code: CodeUniqueViolation}), want: ErrUniqueViolation},
		{name: "other code", err: &pq.Error{Code: "42P01"}, want: nil},
		{name: "not pq", err: errors.New("boom"), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("%w: commit", ErrSerializationFailure)))
	assert.True(t, IsRetryable(&pq.Error{Code: CodeSerializationFailure}))
	assert.False(t, IsRetryable(&pq.Error{Code: CodeExclusionViolation}))
}
