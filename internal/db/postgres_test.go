package db

import (
	"testing"
)

func TestOpen_Unreachable(t *testing.T) {
	_, err := Open("postgres://localhost:1/nonexistent?sslmode=disable&connect_timeout=1")
	if err == nil {
		t.Skip("unexpectedly connected to a local postgres")
	}
}

func TestMigrationFS_HasMigrations(t *testing.T) {
	entries, err := MigrationFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no embedded migrations")
	}
	// Every up migration needs a matching down.
	ups, downs := 0, 0
	for _, e := range entries {
		name := e.Name()
		switch {
		case len(name) > 7 && name[len(name)-7:] == ".up.sql":
			ups++
		case len(name) > 9 && name[len(name)-9:] == ".down.sql":
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Errorf("up migrations = %d, down migrations = %d", ups, downs)
	}
}
