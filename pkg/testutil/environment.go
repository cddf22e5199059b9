package testutil

import (
	"testing"
)

// IsolateXDG points XDG_CONFIG_HOME and XDG_STATE_HOME at fresh temporary
// directories and returns the config home. Tests using it cannot run in
// parallel.
func IsolateXDG(t *testing.T) string {
	t.Helper()
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	return configHome
}
