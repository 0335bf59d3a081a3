package survey

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jtammen/carbon-tracker/model"
)

// SubmitRequest carries one survey submission: an optional user and a
// mapping of question key to an arbitrary JSON-shaped value.
type SubmitRequest struct {
	UserID  *uuid.UUID                 `json:"userId"`
	Answers map[string]json.RawMessage `json:"answers"`
}

// SubmitResponse persists one response row plus one answer row per
// question key, stamped with the hash of the definition the
// respondent saw. The whole submission is one transaction.
func (s *Store) SubmitResponse(ctx context.Context, questionnaireID uuid.UUID, req SubmitRequest) (model.Response, error) {
	var resp model.Response

	if req.Answers == nil {
		return resp, fmt.Errorf("%w: answers must be an object", ErrInvalid)
	}

	// Classify every answer before opening the transaction, so a
	// malformed value never leaves partial rows behind.
	values := make(map[string]model.AnswerValue, len(req.Answers))
	for questionID, raw := range req.Answers {
		value, err := model.ClassifyAnswer(raw)
		if err != nil {
			return resp, fmt.Errorf("%w: answer %q: %s", ErrInvalid, questionID, err)
		}
		values[questionID] = value
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return resp, err
	}
	defer tx.Rollback()

	var canonicalID uuid.UUID
	var definition string
	err = tx.QueryRowContext(ctx, `
		SELECT canonical_id, definition_json FROM questionnaire WHERE id = ?`,
		questionnaireID,
	).Scan(&canonicalID, &definition)
	if errors.Is(err, sql.ErrNoRows) {
		return resp, fmt.Errorf("%w: questionnaire %s", ErrNotFound, questionnaireID)
	}
	if err != nil {
		return resp, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return resp, err
	}
	hash := fmt.Sprintf("%X", sha256.Sum256([]byte(definition)))
	now := s.Now()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO response
			(id, questionnaire_id, canonical_id, user_id, definition_hash, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, questionnaireID, canonicalID, req.UserID, hash, now,
	)
	if err != nil {
		return resp, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO response_item
			(id, response_id, question_id, answer_text, answer_numeric, answer_choice_id)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return resp, err
	}
	defer stmt.Close()

	for questionID, value := range values {
		itemID, err := uuid.NewV4()
		if err != nil {
			return resp, err
		}

		answer := model.Answer{
			ID:         itemID,
			ResponseID: id,
			QuestionID: questionID,
		}
		if value.Kind == model.AnswerNumber {
			numeric := value.Number
			answer.Numeric = &numeric
		} else {
			answer.Text = value.Text
		}

		_, err = stmt.ExecContext(ctx,
			answer.ID, answer.ResponseID, answer.QuestionID,
			answer.Text, answer.Numeric, answer.ChoiceID,
		)
		if err != nil {
			return resp, err
		}
	}

	if err = tx.Commit(); err != nil {
		return resp, err
	}

	return model.Response{
		ID:              id,
		QuestionnaireID: questionnaireID,
		CanonicalID:     canonicalID,
		UserID:          req.UserID,
		DefinitionHash:  hash,
		SubmittedAt:     now,
	}, nil
}
