package adapters

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name     string
		expected int64
		current  int64
		wantErr  error
	}{
		{name: "any version always passes", expected: AnyVersion, current: 42, wantErr: nil},
		{name: "no history matches empty resource", expected: NoHistory, current: 0, wantErr: nil},
		{name: "no history rejects existing resource", expected: NoHistory, current: 3, wantErr: ErrResourceHasChanged},
		{name: "exact version matches", expected: 5, current: 5, wantErr: nil},
		{name: "stale version rejected", expected: 4, current: 5, wantErr: ErrResourceHasChanged},
		{name: "future version rejected", expected: 6, current: 5, wantErr: ErrResourceHasChanged},
		{name: "negative version invalid", expected: -2, current: 0, wantErr: ErrInvalidVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVersion("comment-1", tt.expected, tt.current)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResourceHasChangedError(t *testing.T) {
	err := NewResourceHasChangedError("comment-1", 2, 5)

	assert.ErrorIs(t, err, ErrResourceHasChanged)
	assert.Contains(t, err.Error(), `"comment-1"`)
	assert.Contains(t, err.Error(), "expected version 2")

	var changed *ResourceHasChangedError
	require.True(t, errors.As(error(err), &changed))
	assert.Equal(t, int64(5), changed.ActualVersion)
}

func TestDefaultLimit(t *testing.T) {
	assert.Equal(t, 1000, DefaultLimit(0, 1000))
	assert.Equal(t, 1000, DefaultLimit(-5, 1000))
	assert.Equal(t, 25, DefaultLimit(25, 1000))
}
