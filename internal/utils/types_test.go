package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseError(t *testing.T) {
	t.Run("UnwrapsToSentinel", func(t *testing.T) {
		err := NewDatabaseError(ErrTypePagePinned, "flush file", ErrPagePinned).
			With("file", "a.db").
			With("page", PageID(7))

		assert.True(t, errors.Is(err, ErrPagePinned), "errors.Is through DatabaseError")
		assert.False(t, errors.Is(err, ErrPageNotPinned))

		wrapped := fmt.Errorf("outer: %w", err)
		var dbErr *DatabaseError
		require.True(t, errors.As(wrapped, &dbErr))
		assert.Equal(t, ErrTypePagePinned, dbErr.Type)
		assert.Equal(t, PageID(7), dbErr.Context["page"])
	})

	t.Run("MessageCarriesContext", func(t *testing.T) {
		err := NewDatabaseError(ErrTypeBadBuffer, "frame invalid", ErrBadBuffer).With("frame", 3)
		assert.Contains(t, err.Error(), "frame=3")
		assert.Contains(t, err.Error(), "frame invalid")
		assert.Contains(t, err.Error(), ErrBadBuffer.Error())
	})
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr error
	}{
		{name: "Defaults", mutate: func(o *Options) {}},
		{name: "ZeroPool", mutate: func(o *Options) { o.BufferPoolSize = 0 }, wantErr: ErrInvalidPoolSize},
		{name: "WrongPageSize", mutate: func(o *Options) { o.PageSize = 512 }, wantErr: ErrInvalidPageSize},
		{name: "NoInitialPages", mutate: func(o *Options) { o.InitialPages = -1 }, wantErr: ErrInvalidInitialPages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
