package domain

import "time"

// Report summarizes one backup run.
type Report struct {
	RunID      string
	Database   string
	StartedAt  time.Time
	FinishedAt time.Time
	Artifact   *Artifact
	Targets    []TargetReport
	Err        error
}

// TargetReport is the outcome of uploading to and pruning one target.
type TargetReport struct {
	Name     string
	Uploaded *RemoteFile
	Retained int
	Deleted  []RemoteFile
	Err      error
}

func (r *Report) Succeeded() bool {
	return r.Err == nil
}

func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
