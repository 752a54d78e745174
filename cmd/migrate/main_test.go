package main

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	calls []string
	steps int
	err   error
}

func (f *fakeMigrator) Up() error   { f.calls = append(f.calls, "up"); return f.err }
func (f *fakeMigrator) Down() error { f.calls = append(f.calls, "down"); return f.err }
func (f *fakeMigrator) Steps(n int) error {
	f.calls = append(f.calls, "steps")
	f.steps = n
	return f.err
}
func (f *fakeMigrator) Version() (uint, bool, error) { return 2, false, nil }

func TestParsePlan(t *testing.T) {
	p, err := parsePlan("up", 0)
	require.NoError(t, err)
	assert.Equal(t, "up (all)", p.String())

	p, err = parsePlan("down", 1)
	require.NoError(t, err)
	assert.Equal(t, "down 1", p.String())

	_, err = parsePlan("sideways", 0)
	assert.ErrorContains(t, err, "direction")
	_, err = parsePlan("up", -2)
	assert.ErrorContains(t, err, "steps")
}

func TestPlanApply_Dispatch(t *testing.T) {
	cases := []struct {
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
	for _, tc := range cases {
		p, err := parsePlan(tc.direction, tc.steps)
		require.NoError(t, err)
		m := &fakeMigrator{}
		changed, err := p.apply(m)
		require.NoError(t, err, p.String())
		assert.True(t, changed)
		assert.Equal(t, []string{tc.call}, m.calls, p.String())
		assert.Equal(t, tc.n, m.steps, p.String())
	}
}

func TestPlanApply_NoChangeIsNotAnError(t *testing.T) {
	changed, err := plan{}.apply(&fakeMigrator{err: migrate.ErrNoChange})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestPlanApply_WrapsFailure(t *testing.T) {
	boom := errors.New("dirty database")
	_, err := plan{down: true}.apply(&fakeMigrator{err: boom})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "migrating down (all)")
}
