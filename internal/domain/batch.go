package domain

import "time"

// RequestClass enumerates the backend request classes a job can target.
type RequestClass string

const (
	ClassText  RequestClass = "text"
	ClassImage RequestClass = "image"
	ClassVideo RequestClass = "video"
)

// BatchStatus enumerates batch lifecycle states.
type BatchStatus string

const (
	BatchStatusQueued    BatchStatus = "queued"
	BatchStatusRunning   BatchStatus = "running"
	BatchStatusSucceeded BatchStatus = "succeeded"
	BatchStatusPartial   BatchStatus = "partial"
	BatchStatusFailed    BatchStatus = "failed"
)

// Batch is one submission of prompts processed as an ordered queue of
// independent jobs.
type Batch struct {
	ID        string
	Class     RequestClass
	Model     string
	JobCount  int
	Succeeded int
	Failed    int
	Status    BatchStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Job is one independent unit of work within a batch: a prompt plus its
// generation parameters. Immutable once dispatched.
type Job struct {
	ID          string
	BatchID     string
	Position    int
	Prompt      string
	Class       RequestClass
	Quantity    int
	AspectRatio string
	Model       string
	// ReferenceImage is an optional inline payload steering generation or
	// enhancement.
	ReferenceImage []byte
	// Upscale requests an enhancement pass over each generated image.
	Upscale bool
	// Enrich requests metadata enrichment for each artifact.
	Enrich bool
}

// Notice is a persisted progress message for a batch, polled by the console.
type Notice struct {
	ID        string
	BatchID   string
	Severity  string
	Message   string
	CreatedAt time.Time
}
