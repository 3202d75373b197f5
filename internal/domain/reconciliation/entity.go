package reconciliation

import "time"

// Phase names as reported in results and stream events.
const (
	PhaseDuplicates   = "duplicates"
	PhaseAutoCheckout = "auto_checkout"
	PhaseAbsences     = "absences"
)

// Trigger says who started a run.
type Trigger string

const (
	TriggerSchedule Trigger = "schedule"
	TriggerManual   Trigger = "manual"
)

// DuplicateResult summarizes duplicate cleanup for one date.
type DuplicateResult struct {
	Date      string   `json:"date"`
	Processed int      `json:"processed"`
	Groups    int      `json:"duplicate_groups"`
	Deleted   int      `json:"deleted"`
	Kept      []string `json:"kept_ids"`
	Failed    int      `json:"failed"`
}

// AutoCheckoutResult summarizes forced checkout of stale open records.
type AutoCheckoutResult struct {
	Date       string   `json:"date"`
	Processed  int      `json:"processed"`
	Updated    int      `json:"updated"`
	Skipped    int      `json:"skipped"`
	UpdatedIDs []string `json:"updated_ids"`
	Failed     int      `json:"failed"`
}

// AbsenceResult summarizes absence synthesis.
type AbsenceResult struct {
	Date       string   `json:"date"`
	Weekday    string   `json:"weekday"`
	Scheduled  int      `json:"scheduled"`
	Present    int      `json:"present"`
	Created    int      `json:"created"`
	CreatedFor []string `json:"created_for"`
	Failed     int      `json:"failed"`
	// SkippedReason is set when the phase did nothing on purpose.
	SkippedReason string `json:"skipped_reason,omitempty"`
}

// RunResult is the summary of a full A, B, C run.
type RunResult struct {
	Date         string             `json:"date"`
	Trigger      Trigger            `json:"trigger"`
	StartedAt    time.Time          `json:"started_at"`
	FinishedAt   time.Time          `json:"finished_at"`
	Duplicates   DuplicateResult    `json:"duplicates"`
	AutoCheckout AutoCheckoutResult `json:"auto_checkout"`
	Absences     AbsenceResult      `json:"absences"`
}
