package models

import "time"

// Timesheet is one block of hours a user logged against a task. Creating
// an entry adds its hours to the task's actual_hours.
type Timesheet struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TaskID      uint       `json:"task_id"`
	Task        *Task      `json:"task,omitempty"`
	UserID      uint       `json:"user_id"`
	User        *User      `json:"user,omitempty"`
	Hours       float64    `json:"hours"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
