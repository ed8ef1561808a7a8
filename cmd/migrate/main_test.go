package main

import (
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type recordingMigrator struct {
	calls []string
	steps []int
}

func (r *recordingMigrator) Up() error { r.calls = append(r.calls, "up"); return nil }
func (r *recordingMigrator) Down() error { r.calls = append(r.calls, "down"); return nil }
func (r *recordingMigrator) Steps(n int) error {
	r.calls = append(r.calls, "steps")
	r.steps = append(r.steps, n)
	return nil
}
func (r *recordingMigrator) Force(v int) error {
	r.calls = append(r.calls, "force")
	r.steps = append(r.steps, v)
	return nil
}

func TestApply(t *testing.T) {
	tests := []struct {
		direction string
		steps     int
		call      string
		n         int
	}{
		{"up", 0, "up", 0},
		{"down", 0, "down", 0},
		{"up", 2, "steps", 2},
		{"down", 1, "steps", -1},
	}
	for _, tt := range tests {
		m := &recordingMigrator{}
		require.NoError(t, apply(m, tt.direction, tt.steps))
		assert.Equal(t, []string{tt.call}, m.calls, "%s %d", tt.direction, tt.steps)
		if tt.call == "steps" {
			assert.Equal(t, []int{tt.n}, m.steps)
		}
	}
}

func TestApply_InvalidDirection(t *testing.T) {
	m := &recordingMigrator{}
	err := apply(m, "sideways", 0)
	require.Error(t, err)
	assert.Empty(t, m.calls)
}

func TestApply_StatusChangesNothing(t *testing.T) {
	m := &recordingMigrator{}
	assert.ErrorIs(t, apply(m, "status", 0), migrate.ErrNoChange)
	assert.Empty(t, m.calls)
}

func TestApply_Force(t *testing.T) {
	m := &recordingMigrator{}
	require.NoError(t, apply(m, "force", 2))
	assert.Equal(t, []string{"force"}, m.calls)
	assert.Equal(t, []int{2}, m.steps)

	m = &recordingMigrator{}
	assert.Error(t, apply(m, "force", 0))
	assert.Empty(t, m.calls)
}

func TestPropertyApply_DownStepsAreNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(t, "steps")
		m := &recordingMigrator{}
		if err := apply(m, "down", n); err != nil {
			t.Fatalf("apply: %v", err)
		}
		if len(m.steps) != 1 || m.steps[0] != -n {
			t.Fatalf("expected Steps(%d), got %v", -n, m.steps)
		}
	})
}
