package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	s, err := MakeRandHexString(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)

	_, err = hex.DecodeString(s)
	assert.NoError(t, err)

	empty, err := MakeRandHexString(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGenerateRandByteArray(t *testing.T) {
	a, err := GenerateRandByteArray(32)
	require.NoError(t, err)
	b, err := GenerateRandByteArray(32)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.Len(t, b, 32)
	if string(a) == string(b) {
		t.Logf("warning: two random buffers are identical; extremely unlikely")
	}
}

func TestGenerateRandByteArray_ReadError(t *testing.T) {
	orig := randRead
	t.Cleanup(func() { randRead = orig })
	randRead = func([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

	b, err := GenerateRandByteArray(16)
	assert.Error(t, err)
	assert.Nil(t, b)

	_, err = MakeRandHexString(16)
	assert.Error(t, err)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("secret")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, 6), buf)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	for _, sentinel := range []error{ErrorNotFound, ErrorForbidden, ErrorValidation, ErrorUnauthorized} {
		wrapped := fmt.Errorf("issue 7: %w", sentinel)
		assert.True(t, errors.Is(wrapped, sentinel), sentinel.Error())
	}
	assert.False(t, errors.Is(ErrorNotFound, ErrorForbidden))
}
