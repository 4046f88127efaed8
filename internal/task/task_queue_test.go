package task

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("enqueue and consume", func(t *testing.T) {
		q := NewTaskQueue(2, logger)
		mock := newMockTask(TaskTypeDocumentProcessing, []byte("{}"))

		require.NoError(t, q.Enqueue(mock))

		got := <-q.GetChannel()
		assert.Equal(t, mock.ID(), got.ID())
	})

	t.Run("full queue rejects tasks", func(t *testing.T) {
		q := NewTaskQueue(1, logger)

		require.NoError(t, q.Enqueue(newMockTask("a", nil)))
		err := q.Enqueue(newMockTask("b", nil))
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("closed queue rejects tasks", func(t *testing.T) {
		q := NewTaskQueue(1, logger)
		q.Close()

		err := q.Enqueue(newMockTask("a", nil))
		assert.ErrorIs(t, err, ErrQueueClosed)
	})

	t.Run("double close is safe", func(t *testing.T) {
		q := NewTaskQueue(1, logger)
		q.Close()
		q.Close()
	})
}
