package model

import (
	"time"

	"github.com/gofrs/uuid"
)

// Questionnaire is one immutable version of a survey definition.
// All versions sharing a CanonicalID form a family; at most one of
// them is active at any committed point in time.
type Questionnaire struct {
	ID           uuid.UUID  `json:"id"`
	CanonicalID  uuid.UUID  `json:"canonicalId"`
	Version      int        `json:"version"`
	Title        string     `json:"title"`
	Definition   string     `json:"definition"`
	Status       Status     `json:"status"`
	SupersedesID *uuid.UUID `json:"supersedesId,omitempty"`
	ReplacedByID *uuid.UUID `json:"replacedById,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Response records one submission against a specific questionnaire
// version. DefinitionHash captures the definition text exactly as the
// respondent saw it, so provenance survives later supersession.
type Response struct {
	ID              uuid.UUID  `json:"id"`
	QuestionnaireID uuid.UUID  `json:"questionnaireId"`
	CanonicalID     uuid.UUID  `json:"canonicalId"`
	UserID          *uuid.UUID `json:"userId,omitempty"`
	DefinitionHash  string     `json:"definitionHash"`
	SubmittedAt     time.Time  `json:"submittedAt"`
}

// Answer holds one question's value within a response. Exactly one of
// Text, Numeric or ChoiceID is populated; the unused columns keep
// their empty markers.
type Answer struct {
	ID         uuid.UUID `json:"id"`
	ResponseID uuid.UUID `json:"responseId"`
	QuestionID string    `json:"questionId"`
	Text       string    `json:"text"`
	Numeric    *float64  `json:"numeric,omitempty"`
	ChoiceID   string    `json:"choiceId"`
}
