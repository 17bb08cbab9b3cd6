package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: a flag is visible to exactly the sessions it was set for.
func TestProperty_FlagIsolation(t *testing.T) {
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer sqlite.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	sessionGen := gen.IntRange(0, 1000).Map(func(i int) string {
		return SessionIDFor(i, "/dev/pts/0")
	})

	for name, s := range map[string]SessionStore{"sqlite": sqlite, "memory": NewMemoryStore()} {
		s := s
		properties.Property(name+": set flag is seen only by its session", prop.ForAll(
			func(a, b string) bool {
				ctx := context.Background()
				if err := s.Set(ctx, a, FlagIntroShown); err != nil {
					t.Logf("Set failed: %v", err)
					return false
				}
				setA, err := s.IsSet(ctx, a, FlagIntroShown)
				if err != nil || !setA {
					return false
				}
				setB, err := s.IsSet(ctx, b, "other_flag")
				return err == nil && !setB
			},
			sessionGen,
			sessionGen,
		))
	}

	properties.TestingRun(t)
}
