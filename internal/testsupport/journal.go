package testsupport

import (
	"testing"

	"lectern/internal/journal"
)

// MustOpenJournal opens a journal under the config's data directory for tests
// and registers cleanup.
func MustOpenJournal(t testing.TB, dataDir string) *journal.Journal {
	t.Helper()

	jnl, err := journal.Open(dataDir)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = jnl.Close()
	})
	return jnl
}
