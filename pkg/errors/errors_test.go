package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap("repository_error", "failed to load wardrobe", cause)

	require.EqualError(t, err, "failed to load wardrobe: boom")
	require.ErrorIs(t, err, cause)
	require.True(t, IsCode(err, "repository_error"))
}

func TestCodeOfThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", Wrap("invalid_input", "bad", nil))
	require.Equal(t, "invalid_input", CodeOf(err))
	require.Equal(t, "", CodeOf(errors.New("plain")))
}
