package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	key, err := DeriveKey("correct horse")
	require.NoError(t, err)

	sealed, err := Seal([]byte("secret clip"), key)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "secret clip")

	plain, err := Open(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, "secret clip", string(plain))
}

func TestSeal_FreshNonce(t *testing.T) {
	key, err := DeriveKey("k")
	require.NoError(t, err)
	a, _ := Seal([]byte("x"), key)
	b, _ := Seal([]byte("x"), key)
	assert.NotEqual(t, a, b)
}

func TestOpen_WrongKey(t *testing.T) {
	k1, _ := DeriveKey("one")
	k2, _ := DeriveKey("two")
	sealed, err := Seal([]byte("x"), k1)
	require.NoError(t, err)

	_, err = Open(sealed, k2)
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = Open([]byte("short"), k1)
	assert.Error(t, err)
}

func TestDeriveKey(t *testing.T) {
	a, err := DeriveKey("same")
	require.NoError(t, err)
	b, err := DeriveKey("same")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = DeriveKey("")
	assert.Error(t, err)
}
