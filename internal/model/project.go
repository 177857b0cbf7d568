package model

import "time"

type Project struct {
	ID           string     `json:"id"`
	OwnerID      int        `json:"owner_id"`
	Name         string     `json:"name"`
	Type         string     `json:"type"` // Frontend / Backend / Full Stack / Mobile
	Technologies []string   `json:"technologies"`
	Progress     int        `json:"progress"` // derived from the task set, 0-100
	Period       string     `json:"period,omitempty"`
	TeamType     string     `json:"team_type,omitempty"`
	Description  string     `json:"description,omitempty"`
	Attachments  []string   `json:"attachments,omitempty"`
	IsTeam       bool       `json:"is_team"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

var projectTypes = map[string]bool{
	"Frontend":   true,
	"Backend":    true,
	"Full Stack": true,
	"Mobile":     true,
}

// ValidProjectType reports whether t is one of the allowed project types.
func ValidProjectType(t string) bool {
	return projectTypes[t]
}
