package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogUseCaseObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf)
	ctx := context.Background()

	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:     "import-hierarchy-row",
		Duration: 5 * time.Millisecond,
		Success:  true,
		Fields:   map[string]any{"import": "hierarchy", "outcome": "created"},
	})
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name: "submit-work-program",
		Err:  errors.New("boom"),
	})

	out := buf.String()
	assert.Contains(t, out, "use_case=import-hierarchy-row")
	assert.Contains(t, out, "outcome=created")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "error=boom")
}

func TestSlogUseCaseObserver_SuccessAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	obs := NewSlogUseCaseObserver(logger)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "delete-reference", Success: true})
	assert.Empty(t, buf.String())
}

func TestUseCaseObserverOrNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, useCaseObserverOrNoop(nil))
	assert.IsType(t, NoopUseCaseObserver{}, NewSlogUseCaseObserver(nil))
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
}
