package postgres

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/file"
)

const migrationsDir = "../../../migrations"

func TestMigrationsAreSequentialAndReversible(t *testing.T) {
	abs, err := filepath.Abs(migrationsDir)
	if err != nil {
		t.Fatalf("failed to resolve migrations dir: %v", err)
	}

	src, err := (&file.File{}).Open("file://" + abs)
	if err != nil {
		t.Fatalf("failed to open migrations: %v", err)
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		t.Fatalf("no migrations found: %v", err)
	}

	expected := uint(1)
	for {
		if version != expected {
			t.Fatalf("expected migration %d, got %d", expected, version)
		}

		up, _, err := src.ReadUp(version)
		if err != nil {
			t.Fatalf("migration %d has no up file: %v", version, err)
		}
		up.Close()

		down, _, err := src.ReadDown(version)
		if err != nil {
			t.Fatalf("migration %d has no down file: %v", version, err)
		}
		down.Close()

		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			t.Fatalf("failed to read next migration: %v", err)
		}
		version = next
		expected++
	}

	if expected < 3 {
		t.Fatalf("expected at least 3 migrations, got %d", expected)
	}
}

func TestRunMigrationsMissingSource(t *testing.T) {
	if err := RunMigrations("postgres://invalid:5432/db", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing migrations directory")
	}
}
