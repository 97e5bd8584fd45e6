package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/agenda"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "cabinet dev (none)\n", out)
}

func TestAgendaOnMemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LOG_OUTPUT", "stderr")

	out, err := run(t, "agenda", "--view", "week", "--date", "2026-03-02")
	require.NoError(t, err)
	assert.Contains(t, out, "START")

	_, err = run(t, "agenda", "--view", "month")
	assert.ErrorContains(t, err, "view must be one of")

	_, err = run(t, "agenda", "move", "not-an-id", "2026-03-02T09:00")
	assert.ErrorContains(t, err, "appointment id")

	_, err = run(t, "agenda", "resize", "not-an-id", "2026-03-02T09:00", "2026-03-02T10:00")
	assert.ErrorContains(t, err, "appointment id")

	_, err = run(t, "agenda", "resize", uuid.NewString(), "2026-03-02T09:00", "2026-03-02T10:00")
	assert.ErrorIs(t, err, agenda.ErrUnknownEvent)
}

func TestMigrateNeedsPostgres(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LOG_OUTPUT", "stderr")

	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "no schema to migrate")
}
