package models

// DraftView describes an assessment's edit session.
type DraftView struct {
	AssessmentID string         `json:"assessment_id"`
	State        string         `json:"state"`
	Dirty        bool           `json:"dirty"`
	Responses    map[string]int `json:"responses"`
	Persisted    map[string]int `json:"persisted"`
}

// SetDraftResponseRequest sets one answer in the edit buffer.
type SetDraftResponseRequest struct {
	Value int `json:"value" validate:"required,min=1,max=4"`
}
