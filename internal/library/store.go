package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"loom/internal/learning"
)

// ErrNotFound is returned when a profile or package does not exist.
var ErrNotFound = errors.New("library: not found")

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS learner_profiles (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    subject TEXT NOT NULL,
    profile_json TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS learning_packages (
    package_id TEXT PRIMARY KEY,
    learner_id TEXT NOT NULL,
    package_json TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_packages_learner ON learning_packages(learner_id);
`

// Open initializes or connects to the library database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init library schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// SaveProfile upserts a learner profile.
func (s *Store) SaveProfile(ctx context.Context, profile *learning.LearnerProfile) error {
	if profile == nil || profile.ID == "" {
		return errors.New("profile with id is required")
	}
	encoded, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO learner_profiles (id, name, subject, profile_json, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            subject = excluded.subject,
            profile_json = excluded.profile_json,
            updated_at = excluded.updated_at`,
		profile.ID, profile.Name, profile.Subject, string(encoded), now, now)
	if err != nil {
		return fmt.Errorf("save profile %s: %w", profile.ID, err)
	}
	return nil
}

// GetProfile fetches a learner profile by id.
func (s *Store) GetProfile(ctx context.Context, id string) (*learning.LearnerProfile, error) {
	var encoded string
	err := s.db.QueryRowContext(ctx,
		`SELECT profile_json FROM learner_profiles WHERE id = ?`, id).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}
	var profile learning.LearnerProfile
	if err := json.Unmarshal([]byte(encoded), &profile); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", id, err)
	}
	return &profile, nil
}

// ListProfiles returns all stored profiles, most recently updated first.
func (s *Store) ListProfiles(ctx context.Context) ([]*learning.LearnerProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT profile_json FROM learner_profiles ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*learning.LearnerProfile
	for rows.Next() {
		var encoded string
		if err := rows.Scan(&encoded); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		var profile learning.LearnerProfile
		if err := json.Unmarshal([]byte(encoded), &profile); err != nil {
			return nil, fmt.Errorf("decode profile row: %w", err)
		}
		profiles = append(profiles, &profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profile rows: %w", err)
	}
	return profiles, nil
}

// SavePackage stores a delivered learning package.
func (s *Store) SavePackage(ctx context.Context, pkg *learning.Package) error {
	if pkg == nil || pkg.PackageID == "" {
		return errors.New("package with id is required")
	}
	encoded, err := json.Marshal(pkg)
	if err != nil {
		return fmt.Errorf("marshal package: %w", err)
	}
	createdAt := pkg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO learning_packages (package_id, learner_id, package_json, created_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(package_id) DO UPDATE SET
            learner_id = excluded.learner_id,
            package_json = excluded.package_json`,
		pkg.PackageID, pkg.LearnerID, string(encoded), createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save package %s: %w", pkg.PackageID, err)
	}
	return nil
}

// GetPackage fetches a package by id.
func (s *Store) GetPackage(ctx context.Context, packageID string) (*learning.Package, error) {
	var encoded string
	err := s.db.QueryRowContext(ctx,
		`SELECT package_json FROM learning_packages WHERE package_id = ?`, packageID).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get package %s: %w", packageID, err)
	}
	var pkg learning.Package
	if err := json.Unmarshal([]byte(encoded), &pkg); err != nil {
		return nil, fmt.Errorf("decode package %s: %w", packageID, err)
	}
	return &pkg, nil
}

// ListPackages returns packages for one learner, or all packages when
// learnerID is empty, newest first.
func (s *Store) ListPackages(ctx context.Context, learnerID string) ([]*learning.Package, error) {
	query := `SELECT package_json FROM learning_packages ORDER BY created_at DESC`
	args := []any{}
	if learnerID != "" {
		query = `SELECT package_json FROM learning_packages WHERE learner_id = ? ORDER BY created_at DESC`
		args = append(args, learnerID)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var packages []*learning.Package
	for rows.Next() {
		var encoded string
		if err := rows.Scan(&encoded); err != nil {
			return nil, fmt.Errorf("scan package row: %w", err)
		}
		var pkg learning.Package
		if err := json.Unmarshal([]byte(encoded), &pkg); err != nil {
			return nil, fmt.Errorf("decode package row: %w", err)
		}
		packages = append(packages, &pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate package rows: %w", err)
	}
	return packages, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
