package saga_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/localmart/order-service/internal/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Run(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	boom := errors.New("boom")

	t.Run("all steps execute in order", func(t *testing.T) {
		var order []string
		steps := []saga.Step{
			{Name: "first", Execute: func(context.Context) error {
				order = append(order, "first")
				return nil
			}},
			{Name: "second", Execute: func(context.Context) error {
				order = append(order, "second")
				return nil
			}},
		}

		err := saga.NewRunner(logger).Run(context.Background(), steps)
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("failure compensates completed steps in reverse", func(t *testing.T) {
		var compensated []string
		steps := []saga.Step{
			{
				Name:    "a",
				Execute: func(context.Context) error { return nil },
				Compensate: func(context.Context) error {
					compensated = append(compensated, "a")
					return nil
				},
			},
			{
				Name:    "b",
				Execute: func(context.Context) error { return nil },
				Compensate: func(context.Context) error {
					compensated = append(compensated, "b")
					return nil
				},
			},
			{
				Name:    "c",
				Execute: func(context.Context) error { return boom },
				Compensate: func(context.Context) error {
					compensated = append(compensated, "c")
					return nil
				},
			},
		}

		err := saga.NewRunner(logger).Run(context.Background(), steps)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"b", "a"}, compensated)
	})

	t.Run("nil compensations are skipped", func(t *testing.T) {
		steps := []saga.Step{
			{Name: "no-undo", Execute: func(context.Context) error { return nil }},
			{Name: "fails", Execute: func(context.Context) error { return boom }},
		}

		err := saga.NewRunner(logger).Run(context.Background(), steps)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("compensation error does not mask step error", func(t *testing.T) {
		steps := []saga.Step{
			{
				Name:       "a",
				Execute:    func(context.Context) error { return nil },
				Compensate: func(context.Context) error { return errors.New("undo failed") },
			},
			{Name: "b", Execute: func(context.Context) error { return boom }},
		}

		err := saga.NewRunner(logger).Run(context.Background(), steps)
		assert.ErrorIs(t, err, boom)
	})
}
