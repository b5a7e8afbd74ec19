package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Pavitraraman/oneflow/constants"
	"github.com/Pavitraraman/oneflow/models"
	"github.com/Pavitraraman/oneflow/workflow"
)

var (
	// ErrDragNotPermitted is returned before any network call when a
	// team member uses the direct-manipulation affordance; they only get
	// the request affordance.
	ErrDragNotPermitted = errors.New("team members cannot move tasks directly; use a status request")

	ErrUnknownTask = errors.New("task not on board")

	// ErrNoChange means the target equals the current status; nothing to
	// do and nothing is sent.
	ErrNoChange = errors.New("task already in target status")
)

// Affordance is how the user asked for the move.
type Affordance int

const (
	// AffordanceDrag is the drag-and-drop gesture on the board.
	AffordanceDrag Affordance = iota
	// AffordanceButton is the explicit "move / request" button.
	AffordanceButton
)

// Actor is the signed-in user as the client knows them. The role here
// only gates which affordances are offered locally; the server re-derives
// the role from the session on every call.
type Actor struct {
	ID   uint
	Role constants.Role
}

// MoveResult is delivered once a move settles, after the board has been
// reconciled. Err carries a rejection reason or transport failure; in
// both cases the board no longer shows the optimistic value.
type MoveResult struct {
	TaskID  uint
	Outcome workflow.Outcome
	Task    models.Task
	Err     error
}

// Controller owns the board and is its only mutator. A move shows up on
// the board immediately; the authoritative answer (or its absence, after
// the bounded wait) decides whether it stays. Responses are reconciled
// in arrival order, so the last response received for a task wins.
type Controller struct {
	api       API
	actor     Actor
	timeout   time.Duration
	projectID uint

	// OnCelebrate fires when a transition applies into DONE. Purely
	// presentational; nil is fine.
	OnCelebrate func(models.Task)

	mu    sync.Mutex
	board *Board
}

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout bounds how long a move may stay unconfirmed before the
// controller rolls it back.
func WithTimeout(d time.Duration) Option {
	return func(oc *Controller) { oc.timeout = d }
}

// WithProject scopes Refresh and rollback re-fetches to one project.
func WithProject(id uint) Option {
	return func(oc *Controller) { oc.projectID = id }
}

func NewController(api API, actor Actor, opts ...Option) *Controller {
	oc := &Controller{
		api:     api,
		actor:   actor,
		timeout: 10 * time.Second,
		board:   NewBoard(),
	}
	for _, opt := range opts {
		opt(oc)
	}
	return oc
}

// Refresh loads the board from the task store.
func (oc *Controller) Refresh(ctx context.Context) error {
	tasks, err := oc.api.ListTasks(ctx, ListOptions{ProjectID: oc.projectID})
	if err != nil {
		return err
	}
	oc.mu.Lock()
	oc.board.Load(tasks)
	oc.mu.Unlock()
	return nil
}

// Tasks returns the displayed task list.
func (oc *Controller) Tasks() []models.Task {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.board.Tasks()
}

// Task returns one displayed task.
func (oc *Controller) Task(id uint) (models.Task, bool) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.board.Get(id)
}

// Columns groups the displayed tasks into kanban columns.
func (oc *Controller) Columns() map[constants.TaskStatus][]models.Task {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.board.ByStatus()
}

// Move applies the status change optimistically and issues the
// transition call. Local refusals (unknown task, no-op, a team member
// dragging) come back as an error with no network traffic and no board
// change. Otherwise the returned channel delivers exactly one
// MoveResult once the move settles.
//
// Moves on the same task are allowed to race; whichever response
// arrives last determines what the board shows.
func (oc *Controller) Move(taskID uint, target constants.TaskStatus, via Affordance) (<-chan MoveResult, error) {
	oc.mu.Lock()
	task, ok := oc.board.Get(taskID)
	if !ok {
		oc.mu.Unlock()
		return nil, ErrUnknownTask
	}
	if task.Status == target {
		oc.mu.Unlock()
		return nil, ErrNoChange
	}
	if oc.actor.Role == constants.RoleTeamMember && via == AffordanceDrag {
		oc.mu.Unlock()
		return nil, ErrDragNotPermitted
	}

	snapshot := oc.board.Snapshot()
	oc.board.SetStatus(taskID, target)
	oc.mu.Unlock()

	done := make(chan MoveResult, 1)
	go oc.settle(taskID, target, snapshot, done)
	return done, nil
}

// settle waits for the authority's answer and reconciles the board.
func (oc *Controller) settle(taskID uint, target constants.TaskStatus, snapshot []models.Task, done chan<- MoveResult) {
	ctx, cancel := context.WithTimeout(context.Background(), oc.timeout)
	defer cancel()

	result, err := oc.api.AttemptTransition(ctx, taskID, target)
	if err != nil {
		// Rejected or the call never resolved: either way the
		// optimistic value must not survive.
		oc.rollback(snapshot)
		done <- MoveResult{TaskID: taskID, Err: err}
		return
	}

	// Server truth overwrites the optimistic value. For "applied" that
	// confirms it; for "pending" it reverts the status and surfaces the
	// recorded status_request instead.
	oc.mu.Lock()
	oc.board.Put(result.Task)
	oc.mu.Unlock()

	if result.Outcome == workflow.OutcomeApplied &&
		result.Task.Status == constants.TaskStatusDone &&
		oc.OnCelebrate != nil {
		oc.OnCelebrate(result.Task)
	}

	done <- MoveResult{TaskID: taskID, Outcome: result.Outcome, Task: result.Task}
}

// rollback discards the optimistic mutation and re-queries the store so
// the board matches persisted truth. If the re-fetch itself fails the
// board stays at the restored snapshot, the last known-good state.
func (oc *Controller) rollback(snapshot []models.Task) {
	oc.mu.Lock()
	oc.board.Restore(snapshot)
	oc.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), oc.timeout)
	defer cancel()

	tasks, err := oc.api.ListTasks(ctx, ListOptions{ProjectID: oc.projectID})
	if err != nil {
		return
	}

	oc.mu.Lock()
	oc.board.Load(tasks)
	oc.mu.Unlock()
}
