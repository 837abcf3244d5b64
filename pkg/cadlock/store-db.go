package cadlock

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mirkobrombin/cadlock/pkg/types"
)

type Store struct {
	db *sql.DB
}

// NewStore creates a new Store instance. The same database carries both
// the build registry and the launch ledger.
func NewStore(dbPath string) (s *Store, err error) {
	dbPath = dbPath + "/cadlock.db"
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return
	}

	s = &Store{db: db}

	err = s.initDb()
	if err != nil {
		return
	}

	return
}

// isDbInitialized checks if the database is initialized or not.
func (s *Store) isDbInitialized() bool {
	rows, err := s.db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name='Build'")
	if err != nil {
		return false
	}
	defer rows.Close()

	return rows.Next()
}

// initDb initializes the database if not already done.
func (s *Store) initDb() (err error) {
	if s.isDbInitialized() {
		return
	}

	// Build table
	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS Build (
			Id TEXT PRIMARY KEY UNIQUE,
			SourcePath TEXT,
			OutputPath TEXT,
			Suffix TEXT,
			PayloadSize INTEGER,
			MaxLaunches INTEGER,
			SecurityFlags INTEGER,
			Timestamp DATETIME
		)
	`)

	if err != nil {
		return err
	}

	// Launch table, the per user launch ledger. Rows exist only for
	// identities that have been opened at least once.
	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS Launch (
			BuildId TEXT PRIMARY KEY UNIQUE,
			Count INTEGER
		)
	`)

	if err != nil {
		return err
	}

	return nil
}

// NewBuild inserts a new build into the store.
func (s *Store) NewBuild(build types.Build) (err error) {
	_, err = s.db.Exec(
		"INSERT INTO Build VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		build.Id, build.SourcePath, build.OutputPath, build.Suffix,
		int64(build.PayloadSize), int64(build.MaxLaunches), int64(build.SecurityFlags), build.Timestamp,
	)
	if err != nil {
		err = fmt.Errorf("NewBuild: %s", err)
		return
	}

	return
}

// GetBuilds returns all the builds stored in the store.
func (s *Store) GetBuilds() (builds []types.Build, err error) {
	rows, err := s.db.Query("SELECT * FROM Build ORDER BY Timestamp DESC")
	if err != nil {
		err = fmt.Errorf("GetBuilds: %s", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var build types.Build
		var payloadSize, maxLaunches, securityFlags int64
		err = rows.Scan(&build.Id, &build.SourcePath, &build.OutputPath, &build.Suffix, &payloadSize, &maxLaunches, &securityFlags, &build.Timestamp)
		if err != nil {
			err = fmt.Errorf("GetBuilds: %s", err)
			return
		}
		build.PayloadSize = uint64(payloadSize)
		build.MaxLaunches = uint32(maxLaunches)
		build.SecurityFlags = uint32(securityFlags)
		builds = append(builds, build)
	}

	return
}

// GetBuildById returns a Build instance based on its Id.
func (s *Store) GetBuildById(id string) (build types.Build, err error) {
	rows, err := s.db.Query("SELECT * FROM Build WHERE Id = ?", id)
	if err != nil {
		err = fmt.Errorf("GetBuildById: %s", err)
		return
	}
	defer rows.Close()

	if rows.Next() {
		var payloadSize, maxLaunches, securityFlags int64
		err = rows.Scan(&build.Id, &build.SourcePath, &build.OutputPath, &build.Suffix, &payloadSize, &maxLaunches, &securityFlags, &build.Timestamp)
		if err != nil {
			err = fmt.Errorf("GetBuildById: %s", err)
			return
		}
		build.PayloadSize = uint64(payloadSize)
		build.MaxLaunches = uint32(maxLaunches)
		build.SecurityFlags = uint32(securityFlags)
	} else {
		err = errors.New("build not found")
	}

	return
}

// RemoveBuildById removes a build based on the ID provided as a
// parameter.
func (s *Store) RemoveBuildById(id string) (err error) {
	_, err = s.db.Exec("DELETE FROM Build WHERE Id = ?", id)
	if err != nil {
		err = fmt.Errorf("RemoveBuildById: %s", err)
		return
	}

	return
}

// GetLaunchCount returns the recorded launch count for a build
// identity. An identity never seen before reads as zero.
func (s *Store) GetLaunchCount(id string) (count uint32, err error) {
	rows, err := s.db.Query("SELECT Count FROM Launch WHERE BuildId = ?", id)
	if err != nil {
		err = fmt.Errorf("GetLaunchCount: %s", err)
		return
	}
	defer rows.Close()

	if rows.Next() {
		var n int64
		err = rows.Scan(&n)
		if err != nil {
			err = fmt.Errorf("GetLaunchCount: %s", err)
			return
		}
		count = uint32(n)
	}

	return
}

// IncrementLaunchCount records one more launch for the given build
// identity and returns the new count.
//
// Note: the read and the write are deliberately two statements. Two
// processes racing here can lose a count; enforcement is best effort
// per user and the format accepts that.
func (s *Store) IncrementLaunchCount(id string) (count uint32, err error) {
	count, err = s.GetLaunchCount(id)
	if err != nil {
		err = fmt.Errorf("IncrementLaunchCount: %s", err)
		return
	}

	count++
	_, err = s.db.Exec("INSERT OR REPLACE INTO Launch VALUES (?, ?)", id, int64(count))
	if err != nil {
		err = fmt.Errorf("IncrementLaunchCount: %s", err)
		return
	}

	return
}

// ResetLaunchCount removes the ledger row for the given build identity,
// so the next read comes back as zero.
func (s *Store) ResetLaunchCount(id string) (err error) {
	_, err = s.db.Exec("DELETE FROM Launch WHERE BuildId = ?", id)
	if err != nil {
		err = fmt.Errorf("ResetLaunchCount: %s", err)
		return
	}

	return
}

// GetLaunchCounts returns every ledger row keyed by build identity.
func (s *Store) GetLaunchCounts() (counts map[string]uint32, err error) {
	rows, err := s.db.Query("SELECT BuildId, Count FROM Launch")
	if err != nil {
		err = fmt.Errorf("GetLaunchCounts: %s", err)
		return
	}
	defer rows.Close()

	counts = make(map[string]uint32)
	for rows.Next() {
		var id string
		var n int64
		err = rows.Scan(&id, &n)
		if err != nil {
			err = fmt.Errorf("GetLaunchCounts: %s", err)
			return
		}
		counts[id] = uint32(n)
	}

	return
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
