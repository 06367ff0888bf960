package camunda

import (
	"fmt"
	"testing"

	"reclamations/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  errors.ErrorCode
		retryable bool
	}{
		{
			name:     "unknown process",
			err:      fmt.Errorf("rpc error: code = NotFound desc = Command 'CREATE' rejected: process 'reclamation' not found"),
			wantCode: errors.ErrCodeConfigurationMissing,
		},
		{
			name:     "permission denied",
			err:      fmt.Errorf("rpc error: code = PermissionDenied desc = permission denied"),
			wantCode: errors.ErrCodeConfigurationMissing,
		},
		{
			name:     "unauthenticated",
			err:      fmt.Errorf("rpc error: code = Unauthenticated desc = Unauthenticated"),
			wantCode: errors.ErrCodeConfigurationMissing,
		},
		{
			name:      "gateway unavailable",
			err:       fmt.Errorf("rpc error: code = Unavailable desc = connection refused"),
			wantCode:  errors.ErrCodeWorkflowCallFailed,
			retryable: true,
		},
		{
			name:      "deadline",
			err:       fmt.Errorf("rpc error: code = DeadlineExceeded desc = context deadline exceeded"),
			wantCode:  errors.ErrCodeWorkflowCallFailed,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapZeebeError(tt.err, "create-instance")

			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
			assert.Equal(t, tt.retryable, errors.IsRetryableErrorCode(stdErr.Code))
		})
	}
}

func TestNewClientWithConfig_MissingSettings(t *testing.T) {
	_, err := NewClientWithConfig(&ClientConfig{ProcessID: "reclamation"})
	assert.Equal(t, errors.ErrCodeConfigurationMissing, errors.CodeOf(err))

	_, err = NewClientWithConfig(&ClientConfig{GatewayAddress: "localhost:26500"})
	assert.Equal(t, errors.ErrCodeConfigurationMissing, errors.CodeOf(err))
}
