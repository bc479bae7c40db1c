package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// SPMResponses maps SPM-2 question ids to a 1..4 answer. Stored as JSONB.
type SPMResponses map[string]int

// Value implements driver.Valuer.
func (r SPMResponses) Value() (driver.Value, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]int(r))
}

// Scan implements sql.Scanner.
func (r *SPMResponses) Scan(src interface{}) error {
	raw, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan spm responses: %w", err)
	}
	out := SPMResponses{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("scan spm responses: %w", err)
		}
	}
	*r = out
	return nil
}

// Assessment is an SPM-2 questionnaire instance for a client.
type Assessment struct {
	ID             string       `db:"id" json:"id"`
	UserID         string       `db:"user_id" json:"user_id"`
	ClientID       string       `db:"client_id" json:"client_id"`
	FormID         string       `db:"form_id" json:"form_id"`
	AssessmentDate time.Time    `db:"assessment_date" json:"assessment_date"`
	Responses      SPMResponses `db:"responses" json:"responses"`
	Notes          *string      `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}

// AssessmentWithClient carries the client's name for listings and reports.
type AssessmentWithClient struct {
	Assessment
	ClientFirstName string `db:"client_first_name" json:"client_first_name"`
	ClientLastName  string `db:"client_last_name" json:"client_last_name"`
}

// SubjectName is the client's first name, used in takeaways.
func (a AssessmentWithClient) SubjectName() string {
	return a.ClientFirstName
}

// ClientFullName joins the client's first and last name.
func (a AssessmentWithClient) ClientFullName() string {
	return Client{FirstName: a.ClientFirstName, LastName: a.ClientLastName}.FullName()
}

// AssessmentFilter captures list criteria for assessments.
type AssessmentFilter struct {
	UserID   string
	ClientID string
	Page     int
	PageSize int
}

// AssessmentPatch is a partial update; nil fields are left unchanged.
type AssessmentPatch struct {
	Responses SPMResponses
	Notes     *string
}

// CreateAssessmentRequest is the create payload.
type CreateAssessmentRequest struct {
	ClientID  string       `json:"client_id" validate:"required,uuid"`
	Responses SPMResponses `json:"responses" validate:"required"`
	Notes     *string      `json:"notes" validate:"omitempty,max=10000"`
}

// UpdateAssessmentRequest is the patch payload. At least one field must be present.
type UpdateAssessmentRequest struct {
	Responses SPMResponses `json:"responses"`
	Notes     *string      `json:"notes" validate:"omitempty,max=10000"`
}

func jsonBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", src)
	}
}
