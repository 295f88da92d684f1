package repo_test

import (
	"testing"

	"github.com/hamed0406/pinger/internal/repo"
	"github.com/hamed0406/pinger/internal/repo/logfile"
	"github.com/hamed0406/pinger/internal/repo/memory"
)

// Compile-time interface satisfaction checks.
// Using external test package avoids import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ repo.StateStore = memory.New(nil)
	var _ repo.StateReader = memory.New(nil)
	var _ repo.RecordStore = (*logfile.Store)(nil)
}
