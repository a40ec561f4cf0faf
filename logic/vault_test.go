package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growth_engine/shared"
)

const testFernetKey = "cw_0x689RpI-jtRR7oE8h_eQsKImvJapLeSbXpwF4e4="
const otherFernetKey = "UGFycm90c0FyZU5vdFJlYWxseUZlcm5TZWNyZXRzMzI="

func testVault(t *testing.T, key string) IVault {
	cfg := &shared.Config{}
	cfg.Secrets.EncryptionKey = key
	return NewVault(cfg, &nullLogger{})
}

func TestVaultRoundTrip(t *testing.T) {
	v := testVault(t, testFernetKey)

	tok, err := v.Encrypt("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", tok)

	plain, err := v.Decrypt(tok)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", plain)
}

func TestVaultRejectsGarbage(t *testing.T) {
	v := testVault(t, testFernetKey)

	_, err := v.Decrypt("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVaultRejectsForeignKey(t *testing.T) {
	v1 := testVault(t, testFernetKey)
	v2 := testVault(t, otherFernetKey)

	tok, err := v1.Encrypt("hunter2")
	require.NoError(t, err)

	_, err = v2.Decrypt(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVaultPanicsOnBadKey(t *testing.T) {
	assert.Panics(t, func() {
		testVault(t, "way too short")
	})
}
