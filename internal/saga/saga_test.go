// internal/saga/saga_test.go
package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_AppliesAllStepsInOrder(t *testing.T) {
	var order []string
	steps := []Step{
		{Name: "a", Apply: func(context.Context) error { order = append(order, "a"); return nil }},
		{Name: "b", Apply: func(context.Context) error { order = append(order, "b"); return nil }},
		{Name: "c", Apply: func(context.Context) error { order = append(order, "c"); return nil }},
	}

	require.NoError(t, Run(context.Background(), steps))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRun_RollsBackAppliedStepsInReverse(t *testing.T) {
	var events []string
	boom := errors.New("boom")

	steps := []Step{
		{
			Name:     "a",
			Apply:    func(context.Context) error { events = append(events, "apply-a"); return nil },
			Rollback: func(context.Context) { events = append(events, "rollback-a") },
		},
		{
			Name:     "b",
			Apply:    func(context.Context) error { events = append(events, "apply-b"); return nil },
			Rollback: func(context.Context) { events = append(events, "rollback-b") },
		},
		{
			Name:     "c",
			Apply:    func(context.Context) error { return boom },
			Rollback: func(context.Context) { events = append(events, "rollback-c") },
		},
	}

	err := Run(context.Background(), steps)
	require.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "step c")
	assert.Equal(t, []string{"apply-a", "apply-b", "rollback-b", "rollback-a"}, events,
		"only applied steps roll back, newest first")
}

func TestRun_FirstStepFailureRollsBackNothing(t *testing.T) {
	var rolledBack bool
	steps := []Step{
		{
			Name:     "a",
			Apply:    func(context.Context) error { return errors.New("nope") },
			Rollback: func(context.Context) { rolledBack = true },
		},
	}

	require.Error(t, Run(context.Background(), steps))
	assert.False(t, rolledBack)
}

func TestRun_NilRollbackIsSkipped(t *testing.T) {
	steps := []Step{
		{Name: "read", Apply: func(context.Context) error { return nil }},
		{Name: "fail", Apply: func(context.Context) error { return errors.New("nope") }},
	}
	assert.Error(t, Run(context.Background(), steps))
}

func TestRun_EmptySagaSucceeds(t *testing.T) {
	assert.NoError(t, Run(context.Background(), nil))
}
