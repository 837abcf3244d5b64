package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRoundTrip(t *testing.T) {
	key := []byte(DefaultKey)

	cases := []struct {
		name string
		in   []byte
	}{
		{"empty", []byte{}},
		{"single byte", []byte{0x42}},
		{"shorter than key", []byte("drawing")},
		{"exactly key length", bytes.Repeat([]byte{0xAB}, len(key))},
		{"wraps past key length", bytes.Repeat([]byte{0xCD}, len(key)+1)},
		{"large", bytes.Repeat([]byte("DWG segment data "), 4096)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			original := append([]byte(nil), tc.in...)
			buf := append([]byte(nil), tc.in...)

			Apply(buf, key)
			if len(tc.in) > 0 {
				assert.NotEqual(t, original, buf, "transform should change non-empty input")
			}

			Apply(buf, key)
			assert.Equal(t, original, buf, "double application must restore the input")
		})
	}
}

func TestApplyKeyWraps(t *testing.T) {
	key := []byte("ab")
	buf := []byte{0, 0, 0, 0, 0}

	Apply(buf, key)

	// XOR over zeros exposes the repeating key directly.
	assert.Equal(t, []byte{'a', 'b', 'a', 'b', 'a'}, buf)
}

func TestApplyEmptyKeyLeavesInputAlone(t *testing.T) {
	buf := []byte("unchanged")
	Apply(buf, nil)
	assert.Equal(t, []byte("unchanged"), buf)
}

func TestDefaultKeyIsFrozen(t *testing.T) {
	// The key is part of the wire format. If this test fails, deployed
	// containers can no longer be opened.
	require.Equal(t, "MySecretCADKey2024!@#$", DefaultKey)
	require.Len(t, DefaultKey, 22)
}
