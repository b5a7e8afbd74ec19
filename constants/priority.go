package constants

// TaskPriority orders tasks on boards and dashboards; it has no effect on
// the status workflow.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

// Project statuses are free-form in practice; these are the ones the UI
// offers.
const (
	ProjectStatusPlanned    = "Planned"
	ProjectStatusInProgress = "In Progress"
	ProjectStatusCompleted  = "Completed"
	ProjectStatusOnHold     = "On Hold"
)
