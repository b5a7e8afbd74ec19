package client

import (
	"github.com/Pavitraraman/oneflow/constants"
	"github.com/Pavitraraman/oneflow/models"
)

// Board is the local view of the task list, keyed by id but keeping the
// store's insertion order. It is not safe for concurrent use on its own;
// the Controller serializes every access.
type Board struct {
	order []uint
	tasks map[uint]models.Task
}

func NewBoard() *Board {
	return &Board{tasks: make(map[uint]models.Task)}
}

// Load replaces the whole board with tasks, in the given order.
func (b *Board) Load(tasks []models.Task) {
	b.order = b.order[:0]
	b.tasks = make(map[uint]models.Task, len(tasks))
	for _, t := range tasks {
		b.order = append(b.order, t.ID)
		b.tasks[t.ID] = t
	}
}

func (b *Board) Get(id uint) (models.Task, bool) {
	t, ok := b.tasks[id]
	return t, ok
}

// Put overwrites a task in place, or appends it if the board has not
// seen it before.
func (b *Board) Put(t models.Task) {
	if _, ok := b.tasks[t.ID]; !ok {
		b.order = append(b.order, t.ID)
	}
	b.tasks[t.ID] = t
}

// SetStatus mutates just the status of one task. This is the optimistic
// write; everything else on the task stays as fetched.
func (b *Board) SetStatus(id uint, status constants.TaskStatus) {
	if t, ok := b.tasks[id]; ok {
		t.Status = status
		b.tasks[id] = t
	}
}

// Tasks returns a copy of the board in insertion order.
func (b *Board) Tasks() []models.Task {
	out := make([]models.Task, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.tasks[id])
	}
	return out
}

// ByStatus groups the board into the four kanban columns.
func (b *Board) ByStatus() map[constants.TaskStatus][]models.Task {
	columns := make(map[constants.TaskStatus][]models.Task, len(constants.TaskStatuses))
	for _, s := range constants.TaskStatuses {
		columns[s] = nil
	}
	for _, id := range b.order {
		t := b.tasks[id]
		columns[t.Status] = append(columns[t.Status], t)
	}
	return columns
}

// Snapshot captures the board for a later Restore.
func (b *Board) Snapshot() []models.Task {
	return b.Tasks()
}

// Restore rewinds the board to a snapshot taken before an optimistic
// mutation.
func (b *Board) Restore(snapshot []models.Task) {
	b.Load(snapshot)
}
