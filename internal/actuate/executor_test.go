// internal/actuate/executor_test.go
package actuate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ZevCorp/iu-screenagent/internal/schemas"
)

// mockInput records every synthetic event it receives.
type mockInput struct {
	moves  [][2]int
	clicks int
	typed  []string
	keys   []string

	moveErr  error
	clickErr error
	typeErr  error
	keyErr   error
}

func (m *mockInput) MoveMouse(x, y int) error {
	m.moves = append(m.moves, [2]int{x, y})
	return m.moveErr
}

func (m *mockInput) Click() error {
	m.clicks++
	return m.clickErr
}

func (m *mockInput) TypeText(text string) error {
	m.typed = append(m.typed, text)
	return m.typeErr
}

func (m *mockInput) KeyTap(key string) error {
	m.keys = append(m.keys, key)
	return m.keyErr
}

func testGeometry() schemas.DisplayGeometry {
	return schemas.DisplayGeometry{LogicalWidth: 1440, LogicalHeight: 900, Scale: 2}
}

func TestExecutorClickDenormalizesBeforeMoving(t *testing.T) {
	in := &mockInput{}
	ex := NewExecutor(in, 0, zap.NewNop())

	err := ex.Execute(context.Background(), schemas.ActionDecision{
		Kind:  schemas.ActionClick,
		XNorm: 0.5,
		YNorm: 0.25,
	}, testGeometry())
	require.NoError(t, err)

	require.Len(t, in.moves, 1)
	assert.Equal(t, [2]int{720, 225}, in.moves[0])
	assert.Equal(t, 1, in.clicks)
}

func TestExecutorClickPausesBetweenMoveAndPress(t *testing.T) {
	in := &mockInput{}
	pause := 30 * time.Millisecond
	ex := NewExecutor(in, pause, zap.NewNop())

	start := time.Now()
	err := ex.Execute(context.Background(), schemas.ActionDecision{
		Kind:  schemas.ActionClick,
		XNorm: 0.1,
		YNorm: 0.1,
	}, testGeometry())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), pause)
	assert.Equal(t, 1, in.clicks)
}

func TestExecutorClickStopsWhenMoveFails(t *testing.T) {
	in := &mockInput{moveErr: errors.New("pointer grab refused")}
	ex := NewExecutor(in, 0, zap.NewNop())

	err := ex.Execute(context.Background(), schemas.ActionDecision{
		Kind:  schemas.ActionClick,
		XNorm: 0.5,
		YNorm: 0.5,
	}, testGeometry())
	require.Error(t, err)
	assert.Zero(t, in.clicks, "a failed move must not be followed by a press")
}

func TestExecutorClickHonorsCancellation(t *testing.T) {
	in := &mockInput{}
	ex := NewExecutor(in, time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ex.Execute(ctx, schemas.ActionDecision{
		Kind:  schemas.ActionClick,
		XNorm: 0.5,
		YNorm: 0.5,
	}, testGeometry())
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, in.clicks)
}

func TestExecutorTypeText(t *testing.T) {
	in := &mockInput{}
	ex := NewExecutor(in, 0, zap.NewNop())

	err := ex.Execute(context.Background(), schemas.ActionDecision{
		Kind: schemas.ActionTypeText,
		Text: "hello world",
	}, testGeometry())
	require.NoError(t, err)
	assert.Equal(t, []string{"hello world"}, in.typed)
}

func TestExecutorKeyPress(t *testing.T) {
	in := &mockInput{}
	ex := NewExecutor(in, 0, zap.NewNop())

	err := ex.Execute(context.Background(), schemas.ActionDecision{
		Kind: schemas.ActionKeyPress,
		Key:  "enter",
	}, testGeometry())
	require.NoError(t, err)
	assert.Equal(t, []string{"enter"}, in.keys)
}

func TestExecutorSkipsUnknownKey(t *testing.T) {
	in := &mockInput{}
	ex := NewExecutor(in, 0, zap.NewNop())

	err := ex.Execute(context.Background(), schemas.ActionDecision{
		Kind: schemas.ActionKeyPress,
		Key:  "hyper-meta-q",
	}, testGeometry())
	require.NoError(t, err, "unknown keys are skipped, not failed")
	assert.Empty(t, in.keys)
}

func TestExecutorGoalReachedIsNoOp(t *testing.T) {
	in := &mockInput{}
	ex := NewExecutor(in, 0, zap.NewNop())

	err := ex.Execute(context.Background(), schemas.ActionDecision{
		Kind: schemas.ActionGoalReached,
	}, testGeometry())
	require.NoError(t, err)
	assert.Empty(t, in.moves)
	assert.Zero(t, in.clicks)
	assert.Empty(t, in.typed)
	assert.Empty(t, in.keys)
}

func TestExecutorReportsInputFailures(t *testing.T) {
	in := &mockInput{typeErr: errors.New("event tap disabled")}
	ex := NewExecutor(in, 0, zap.NewNop())

	err := ex.Execute(context.Background(), schemas.ActionDecision{
		Kind: schemas.ActionTypeText,
		Text: "x",
	}, testGeometry())
	require.Error(t, err)
}
