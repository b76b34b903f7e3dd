package saga

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerExecutesStepsInOrder(t *testing.T) {
	runner := NewRunner(NewMemoryStepLog())

	var order []string
	steps := []Step{
		{Name: "first", Run: func() error { order = append(order, "first"); return nil }},
		{Name: "second", Run: func() error { order = append(order, "second"); return nil }},
	}

	require.NoError(t, runner.Execute("test:1", steps))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestRunnerCompensatesOnFailure(t *testing.T) {
	runner := NewRunner(NewMemoryStepLog())

	var compensated []string
	steps := []Step{
		{
			Name:       "a",
			Run:        func() error { return nil },
			Compensate: func() error { compensated = append(compensated, "a"); return nil },
		},
		{
			Name:       "b",
			Run:        func() error { return nil },
			Compensate: func() error { compensated = append(compensated, "b"); return nil },
		},
		{
			Name: "c",
			Run:  func() error { return errors.New("boom") },
		},
	}

	err := runner.Execute("test:2", steps)
	require.Error(t, err)

	// 已完成步骤逆序补偿
	assert.Equal(t, []string{"b", "a"}, compensated)
}

func TestRunnerStopsAfterFailedStep(t *testing.T) {
	runner := NewRunner(NewMemoryStepLog())

	ran := false
	steps := []Step{
		{Name: "fails", Run: func() error { return errors.New("boom") }},
		{Name: "never", Run: func() error { ran = true; return nil }},
	}

	require.Error(t, runner.Execute("test:3", steps))
	assert.False(t, ran, "后续步骤不应提交")
}

func TestRunnerRetriesTransientFailure(t *testing.T) {
	runner := NewRunner(NewMemoryStepLog())

	attempts := 0
	steps := []Step{
		{
			Name: "flaky",
			Run: func() error {
				attempts++
				if attempts < 3 {
					return errors.New("transient")
				}
				return nil
			},
		},
	}

	require.NoError(t, runner.Execute("test:4", steps))
	assert.Equal(t, 3, attempts)
}

func TestRunnerSkipsDoneStepsOnReplay(t *testing.T) {
	log := NewMemoryStepLog()
	runner := NewRunner(log)

	firstRuns := 0
	failing := true
	steps := []Step{
		{Name: "done-once", Run: func() error { firstRuns++; return nil }},
		{
			Name: "eventually",
			Run: func() error {
				if failing {
					return errors.New("still broken")
				}
				return nil
			},
		},
	}

	require.Error(t, runner.Execute("test:5", steps))
	require.Equal(t, 1, firstRuns)

	// 重放：第一步已标记完成，不再执行
	failing = false
	require.NoError(t, runner.Execute("test:5", steps))
	assert.Equal(t, 1, firstRuns)

	// saga成功后标记清除
	done, err := log.IsDone("test:5:done-once")
	require.NoError(t, err)
	assert.False(t, done)
}
