package cadlock

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirkobrombin/cadlock/pkg/codec"
)

// buildTestContainer assembles a container on disk without going
// through Build, so the corruption tests control every byte.
func buildTestContainer(t *testing.T, dir string, payload []byte, footer codec.Footer) string {
	t.Helper()

	encrypted := append([]byte(nil), payload...)
	codec.Apply(encrypted, []byte(codec.DefaultKey))

	content := append([]byte("stub bytes"), encrypted...)
	content = append(content, footer.Bytes()...)

	path := filepath.Join(dir, "container.exe")
	require.NoError(t, os.WriteFile(path, content, 0755))
	return path
}

func testFooter(payloadSize uint64) codec.Footer {
	return codec.Footer{
		PayloadSize:   payloadSize,
		MaxLaunches:   2,
		BuildId:       [16]byte{0xde, 0xad, 0xbe, 0xef},
		SecurityFlags: codec.FlagMeltdown,
		Version:       codec.Version,
	}
}

func TestParseContainerReadsBackFooter(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("payload payload payload")
	path := buildTestContainer(t, dir, payload, testFooter(uint64(len(payload))))

	footer, err := ParseContainer(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(payload)), footer.PayloadSize)
	assert.Equal(t, uint32(2), footer.MaxLaunches)
	assert.True(t, footer.HasFlag(codec.FlagMeltdown))
	assert.False(t, footer.HasFlag(codec.FlagSelfDestruct))

	assert.True(t, IsContainer(path))
}

func TestParseContainerRejectsPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.exe")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0755))

	_, err := ParseContainer(path)
	assert.ErrorIs(t, err, ErrInvalidContainer)
	assert.ErrorIs(t, err, codec.ErrNoFooter)

	assert.False(t, IsContainer(path))
}

func TestParseContainerRejectsShortFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.exe")
	require.NoError(t, os.WriteFile(path, []byte("tiny"), 0755))

	_, err := ParseContainer(path)
	assert.ErrorIs(t, err, ErrInvalidContainer)
}

func TestParseContainerRejectsCorruptedMagic(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("payload")
	path := buildTestContainer(t, dir, payload, testFooter(uint64(len(payload))))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	// flip one byte inside the magic sentinel
	content[len(content)-codec.FooterSize+33] ^= 0xff
	require.NoError(t, os.WriteFile(path, content, 0755))

	_, err = ParseContainer(path)
	assert.ErrorIs(t, err, ErrInvalidContainer)
	assert.ErrorIs(t, err, codec.ErrNoFooter)
}

func TestParseContainerRejectsUnknownVersion(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("payload")
	path := buildTestContainer(t, dir, payload, testFooter(uint64(len(payload))))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	// the version byte is the last byte of the file
	content[len(content)-1] = 9
	require.NoError(t, os.WriteFile(path, content, 0755))

	_, err = ParseContainer(path)
	assert.ErrorIs(t, err, ErrInvalidContainer)
	assert.ErrorIs(t, err, codec.ErrVersion)
	assert.NotErrorIs(t, err, codec.ErrNoFooter)
}

func TestParseContainerRejectsOversizedPayloadClaim(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("payload")
	path := buildTestContainer(t, dir, payload, testFooter(uint64(len(payload))))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	// claim a payload far bigger than the file
	binary.LittleEndian.PutUint64(content[len(content)-codec.FooterSize:], 1<<40)
	require.NoError(t, os.WriteFile(path, content, 0755))

	_, err = ParseContainer(path)
	assert.ErrorIs(t, err, ErrInvalidContainer)
}

func TestParseContainerRejectsTruncatedPayload(t *testing.T) {
	dir := t.TempDir()
	payload := make([]byte, 1000)
	path := buildTestContainer(t, dir, payload, testFooter(uint64(len(payload))))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	// drop payload bytes but keep the footer intact
	truncated := append(append([]byte(nil), content[:100]...), content[len(content)-codec.FooterSize:]...)
	require.NoError(t, os.WriteFile(path, truncated, 0755))

	_, err = ParseContainer(path)
	assert.ErrorIs(t, err, ErrInvalidContainer)
}

func TestParseContainerMissingFile(t *testing.T) {
	_, err := ParseContainer(filepath.Join(t.TempDir(), "gone.exe"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidContainer)
}

func TestExtractPayloadDecrypts(t *testing.T) {
	dir := t.TempDir()
	payload := []byte{0x00, 0x01, 0xfe, 0xff, 0x42}
	path := buildTestContainer(t, dir, payload, testFooter(uint64(len(payload))))

	footer, err := ParseContainer(path)
	require.NoError(t, err)

	got, err := ExtractPayload(path, footer)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
