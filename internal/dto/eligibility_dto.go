package dto

// Check outcomes surfaced to the kitchen terminal. CLAIMED and the two
// INELIGIBLE_* values mirror the recorded meal statuses; ALREADY_CLAIMED is a
// response-only outcome for re-scans and writes no record.
const (
	CheckStatusClaimed         = "CLAIMED"
	CheckStatusAlreadyClaimed  = "ALREADY_CLAIMED"
	CheckStatusNotScheduled    = "INELIGIBLE_NOT_SCHEDULED"
	CheckStatusStudentNotFound = "INELIGIBLE_STUDENT_NOT_FOUND"
)

// EligibilityCheckRequest is the kitchen terminal check-in payload.
type EligibilityCheckRequest struct {
	StudentIDNumber string `json:"student_id_number" validate:"required,min=3,max=32"`
}

// StudentInfo is the display payload shown at the kitchen terminal after a
// check.
type StudentInfo struct {
	StudentIDNumber string `json:"student_id_number"`
	Name            string `json:"name"`
	Program         string `json:"program"`
	YearLevel       int    `json:"year_level"`
	Section         string `json:"section,omitempty"`
	AvatarURL       string `json:"avatar_url"`
}

// EligibilityCheckResponse reports the outcome of one check-in.
type EligibilityCheckResponse struct {
	Status  string       `json:"status"`
	Student *StudentInfo `json:"student,omitempty"`
	Reason  string       `json:"reason,omitempty"`
}

// BackfillRequest names the calendar date to backfill unclaimed records for.
type BackfillRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// BackfillResponse reports how many ELIGIBLE_BUT_NOT_CLAIMED records were
// created.
type BackfillResponse struct {
	CreatedCount int64  `json:"created_count"`
	Message      string `json:"message"`
}

// ClaimEvent is broadcast over the live feed and the NATS subject whenever a
// meal is claimed.
type ClaimEvent struct {
	StudentIDNumber string `json:"student_id_number"`
	Name            string `json:"name"`
	Program         string `json:"program"`
	YearLevel       int    `json:"year_level"`
	ClaimedAt       string `json:"claimed_at"`
}
