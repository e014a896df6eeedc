package gitlib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/gitbridge/pkg/gitlib"
)

func TestNewHashRoundTrip(t *testing.T) {
	t.Parallel()

	const full = "0123456789abcdef0123456789abcdef01234567"

	hash := gitlib.NewHash(full)
	assert.Equal(t, full, hash.String())
}

func TestNewHashShortInput(t *testing.T) {
	t.Parallel()

	hash := gitlib.NewHash("ab12")
	assert.Equal(t, "ab12", hash.Prefix(4))
	assert.Equal(t, "ab120000", hash.Prefix(8))
}

func TestNewHashInvalidInput(t *testing.T) {
	t.Parallel()

	assert.True(t, gitlib.NewHash("zz").IsZero())
	assert.True(t, gitlib.NewHash("").IsZero())
}

func TestHashIsZero(t *testing.T) {
	t.Parallel()

	assert.True(t, gitlib.ZeroHash().IsZero())
	assert.False(t, gitlib.NewHash("01").IsZero())
}

func TestHashPrefixClamp(t *testing.T) {
	t.Parallel()

	hash := gitlib.NewHash("ff")
	assert.Len(t, hash.Prefix(100), gitlib.HashHexSize)
}

func TestHashOidRoundTrip(t *testing.T) {
	t.Parallel()

	hash := gitlib.NewHash("deadbeef00112233445566778899aabbccddeeff")
	got := gitlib.HashFromOid(hash.ToOid())
	assert.Equal(t, hash, got)
}
