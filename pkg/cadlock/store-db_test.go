package cadlock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirkobrombin/cadlock/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLaunchCountStartsAtZero(t *testing.T) {
	store := newTestStore(t)

	count, err := store.GetLaunchCount("never-seen")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), count)
}

func TestIncrementLaunchCountIsMonotonic(t *testing.T) {
	store := newTestStore(t)

	for want := uint32(1); want <= 5; want++ {
		count, err := store.IncrementLaunchCount("abc")
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}

	count, err := store.GetLaunchCount("abc")
	require.NoError(t, err)
	assert.Equal(t, uint32(5), count)

	// other identities are untouched
	count, err = store.GetLaunchCount("def")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), count)
}

func TestResetLaunchCount(t *testing.T) {
	store := newTestStore(t)

	_, err := store.IncrementLaunchCount("abc")
	require.NoError(t, err)

	err = store.ResetLaunchCount("abc")
	require.NoError(t, err)

	count, err := store.GetLaunchCount("abc")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), count)

	// resetting an absent row is not an error
	require.NoError(t, store.ResetLaunchCount("never-seen"))
}

func TestGetLaunchCounts(t *testing.T) {
	store := newTestStore(t)

	_, err := store.IncrementLaunchCount("abc")
	require.NoError(t, err)
	_, err = store.IncrementLaunchCount("def")
	require.NoError(t, err)
	_, err = store.IncrementLaunchCount("def")
	require.NoError(t, err)

	counts, err := store.GetLaunchCounts()
	require.NoError(t, err)
	assert.Equal(t, map[string]uint32{"abc": 1, "def": 2}, counts)
}

func testBuild(id string, ts time.Time) types.Build {
	return types.Build{
		Id:            id,
		SourcePath:    "/drawings/" + id + ".dwg",
		OutputPath:    "/drawings/" + id + "_protected.exe",
		Suffix:        "_protected",
		PayloadSize:   1024,
		MaxLaunches:   3,
		SecurityFlags: 5,
		Timestamp:     ts,
	}
}

func TestBuildRecordRoundTrip(t *testing.T) {
	store := newTestStore(t)

	now := time.Now()
	require.NoError(t, store.NewBuild(testBuild("one", now)))

	build, err := store.GetBuildById("one")
	require.NoError(t, err)
	assert.Equal(t, "one", build.Id)
	assert.Equal(t, "/drawings/one.dwg", build.SourcePath)
	assert.Equal(t, "/drawings/one_protected.exe", build.OutputPath)
	assert.Equal(t, "_protected", build.Suffix)
	assert.Equal(t, uint64(1024), build.PayloadSize)
	assert.Equal(t, uint32(3), build.MaxLaunches)
	assert.Equal(t, uint32(5), build.SecurityFlags)
	assert.WithinDuration(t, now, build.Timestamp, time.Second)
}

func TestGetBuildsNewestFirst(t *testing.T) {
	store := newTestStore(t)

	now := time.Now()
	require.NoError(t, store.NewBuild(testBuild("old", now.Add(-2*time.Hour))))
	require.NoError(t, store.NewBuild(testBuild("new", now)))
	require.NoError(t, store.NewBuild(testBuild("mid", now.Add(-1*time.Hour))))

	builds, err := store.GetBuilds()
	require.NoError(t, err)
	require.Len(t, builds, 3)
	assert.Equal(t, "new", builds[0].Id)
	assert.Equal(t, "mid", builds[1].Id)
	assert.Equal(t, "old", builds[2].Id)
}

func TestRemoveBuildKeepsLedger(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.NewBuild(testBuild("one", time.Now())))
	_, err := store.IncrementLaunchCount("one")
	require.NoError(t, err)

	require.NoError(t, store.RemoveBuildById("one"))

	_, err = store.GetBuildById("one")
	assert.EqualError(t, err, "build not found")

	// the spent budget survives the record
	count, err := store.GetLaunchCount("one")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), count)
}

func TestNewStoreFailsOnMissingDirectory(t *testing.T) {
	_, err := NewStore("/does/not/exist/anywhere")
	assert.Error(t, err)
}
