/*
Package action records every editor mutation as a reversible command.

PURPOSE:
  Converts user intents into Actions that can be undone and redone. The
  Engine keeps two stacks; actions call the hotel services for the forward
  (Redo) and inverse (Undo) operation.

STACK DISCIPLINE:
  Do(a):  a.Redo(), push undo, clear redo
  Undo(): pop undo, a.Undo(), push redo
  Redo(): pop redo, a.Redo(), push undo

  A failure inside Redo or Undo leaves both stacks exactly as they were
  and surfaces as *ActionError.

IDENTITY:
  Storage hands out a fresh id whenever an entity is recreated (undoing a
  cascade, redoing an add). The engine owns one Remap shared by all of its
  actions; recreating actions record old -> new and every action resolves
  its stored ids through it before touching a service.

  ┌────────────┐  Redo   ┌──────────────┐   svc   ┌────────────┐
  │ undo stack │ ◀────── │    Action    │ ──────▶ │  services  │
  └────────────┘  Undo   │ (ids via     │         └────────────┘
  ┌────────────┐ ──────▶ │  Remap)      │
  │ redo stack │         └──────────────┘
  └────────────┘

SEE ALSO:
  - floor.go, element.go, reservation.go: The action catalogue
  - remap.go: Old -> new id table
  - api/controller.go: Builds actions from requests
*/
package action

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Action is one invertible editor command.
type Action interface {
	// Name identifies the action in logs and history.
	Name() string

	// Redo applies the action. It is called for the first execution too.
	Redo(ctx context.Context) error

	// Undo reverts the last Redo.
	Undo(ctx context.Context) error
}

type Op string

const (
	OpDo   Op = "do"
	OpUndo Op = "undo"
	OpRedo Op = "redo"
)

// ActionError wraps a failure raised while executing an action.
type ActionError struct {
	ID     uuid.UUID
	Action string
	Op     Op
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.Action, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// Engine holds the paired undo/redo stacks.
type Engine struct {
	undo  []Action
	redo  []Action
	remap *Remap
	log   logrus.FieldLogger
}

func NewEngine(log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		remap: NewRemap(),
		log:   log.WithField("component", "action_engine"),
	}
}

// Remap returns the id table shared by this engine's actions.
func (e *Engine) Remap() *Remap { return e.remap }

// Do executes a new action and records it.
func (e *Engine) Do(ctx context.Context, a Action) error {
	if err := e.run(ctx, a, OpDo, a.Redo); err != nil {
		return err
	}
	e.undo = append(e.undo, a)
	e.redo = nil
	return nil
}

// Undo reverts the most recent action.
func (e *Engine) Undo(ctx context.Context) error {
	if !e.CanUndo() {
		return ErrNothingToUndo
	}
	a := e.undo[len(e.undo)-1]
	if err := e.run(ctx, a, OpUndo, a.Undo); err != nil {
		return err
	}
	e.undo = e.undo[:len(e.undo)-1]
	e.redo = append(e.redo, a)
	return nil
}

// Redo re-applies the most recently undone action.
func (e *Engine) Redo(ctx context.Context) error {
	if !e.CanRedo() {
		return ErrNothingToRedo
	}
	a := e.redo[len(e.redo)-1]
	if err := e.run(ctx, a, OpRedo, a.Redo); err != nil {
		return err
	}
	e.redo = e.redo[:len(e.redo)-1]
	e.undo = append(e.undo, a)
	return nil
}

func (e *Engine) CanUndo() bool { return len(e.undo) > 0 }
func (e *Engine) CanRedo() bool { return len(e.redo) > 0 }

// Clear empties both stacks. Called when leaving an editing context.
func (e *Engine) Clear() {
	e.undo = nil
	e.redo = nil
}

// History returns the names on the undo stack, oldest first.
func (e *Engine) History() []string {
	names := make([]string, len(e.undo))
	for i, a := range e.undo {
		names[i] = a.Name()
	}
	return names
}

func (e *Engine) run(ctx context.Context, a Action, op Op, fn func(context.Context) error) error {
	id := uuid.New()
	log := e.log.WithFields(logrus.Fields{"action": a.Name(), "op": string(op), "action_id": id.String()})
	if err := fn(ctx); err != nil {
		log.WithError(err).Debug("action failed")
		return &ActionError{ID: id, Action: a.Name(), Op: op, Err: err}
	}
	log.Debug("action applied")
	return nil
}
