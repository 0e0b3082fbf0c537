package model

import "time"

// Stage is a client's pipeline status.
type Stage string

const (
	StageNew         Stage = "new"
	StageRequirement Stage = "requirement"
	StageSchedule    Stage = "schedule"
	StageDead        Stage = "dead"
)

var Stages = []Stage{StageNew, StageRequirement, StageSchedule, StageDead}

func (s Stage) Valid() bool { return isMember(s, Stages) }

func (s Stage) Label() string {
	switch s {
	case StageNew:
		return "New"
	case StageRequirement:
		return "Requirements"
	case StageSchedule:
		return "Schedule"
	case StageDead:
		return "Dead"
	}
	return string(s)
}

func ParseStage(s string) (Stage, bool) { return parseEnum(s, Stages) }

// Client is a roster row.
type Client struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"name"`
	Stage        Stage     `json:"stage"`
	LastActivity time.Time `json:"last_activity"`
	Created      time.Time `json:"created"`
	AssignedRep  string    `json:"assigned_rep"`
}

// ClientSummary is what list and search return.
type ClientSummary struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Stage        string    `json:"stage"`
	LastActivity time.Time `json:"last_activity"`
	Created      time.Time `json:"created"`
	AssignedRep  string    `json:"assigned_rep"`
}

// DeadMark records why a client was dropped from the pipeline.
type DeadMark struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"client_id"`
	Reason    string    `json:"reason"`
	CreatedOn time.Time `json:"created_on"`
}
