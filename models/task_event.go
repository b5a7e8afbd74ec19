package models

import (
	"time"

	"github.com/Pavitraraman/oneflow/constants"
)

// TaskEvent records one applied status transition. Rows are written in
// the same transaction as the status change, so the event log never
// disagrees with the task.
type TaskEvent struct {
	ID         string               `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TaskID     uint                 `json:"task_id"`
	FromStatus constants.TaskStatus `json:"from_status"`
	ToStatus   constants.TaskStatus `json:"to_status"`
	ActorID    uint                 `json:"actor_id"`
	CreatedAt  time.Time            `json:"created_at"`
}
