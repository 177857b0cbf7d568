package model

import "time"

const DefaultTaskCategory = "feature"

type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	OwnerID     int        `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"` // feature / bug / improvement / documentation
	IsCompleted bool       `json:"is_completed"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

var taskCategories = map[string]bool{
	"feature":       true,
	"bug":           true,
	"improvement":   true,
	"documentation": true,
}

// ValidTaskCategory reports whether c is one of the allowed task categories.
func ValidTaskCategory(c string) bool {
	return taskCategories[c]
}
