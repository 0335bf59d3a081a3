package survey_test

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtammen/carbon-tracker/survey"
)

func TestSubmitResponseStampsDefinitionHash(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	q, err := store.Create(ctx, survey.CreateRequest{
		Title:      "Hashing",
		Definition: json.RawMessage(`{"a":1}`),
	})
	require.NoError(t, err)

	resp, err := store.SubmitResponse(ctx, q.ID, survey.SubmitRequest{
		Answers: map[string]json.RawMessage{},
	})
	require.NoError(t, err)

	want := fmt.Sprintf("%X", sha256.Sum256([]byte(`{"a":1}`)))
	assert.Equal(t, want, resp.DefinitionHash)
	assert.Equal(t, q.CanonicalID, resp.CanonicalID)

	var stored string
	err = store.DB.QueryRow("SELECT definition_hash FROM response WHERE id = ?", resp.ID).Scan(&stored)
	require.NoError(t, err)
	assert.Equal(t, want, stored)
}

func TestSubmitResponseShredsAnswersByShape(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	q, err := store.Create(ctx, survey.CreateRequest{Title: "Shapes"})
	require.NoError(t, err)

	resp, err := store.SubmitResponse(ctx, q.ID, survey.SubmitRequest{
		Answers: map[string]json.RawMessage{
			"q1": json.RawMessage(`3`),
			"q2": json.RawMessage(`"red"`),
			"q3": json.RawMessage(`[1,2]`),
			"q4": json.RawMessage(`true`),
			"q5": json.RawMessage(`{"unit":"kg","amount":2}`),
		},
	})
	require.NoError(t, err)

	type row struct {
		text    string
		numeric sql.NullFloat64
	}
	rows := map[string]row{}
	result, err := store.DB.Query(
		"SELECT question_id, answer_text, answer_numeric FROM response_item WHERE response_id = ?",
		resp.ID,
	)
	require.NoError(t, err)
	defer result.Close()
	for result.Next() {
		var questionID string
		var r row
		require.NoError(t, result.Scan(&questionID, &r.text, &r.numeric))
		rows[questionID] = r
	}
	require.NoError(t, result.Err())
	require.Len(t, rows, 5)

	require.True(t, rows["q1"].numeric.Valid)
	assert.Equal(t, 3.0, rows["q1"].numeric.Float64)
	assert.Equal(t, "", rows["q1"].text)

	assert.False(t, rows["q2"].numeric.Valid)
	assert.Equal(t, "red", rows["q2"].text)

	assert.False(t, rows["q3"].numeric.Valid)
	assert.Equal(t, "[1,2]", rows["q3"].text)

	assert.False(t, rows["q4"].numeric.Valid)
	assert.Equal(t, "true", rows["q4"].text)

	assert.False(t, rows["q5"].numeric.Valid)
	assert.Equal(t, `{"amount":2,"unit":"kg"}`, rows["q5"].text)
}

func TestSubmitResponseRecordsUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	q, err := store.Create(ctx, survey.CreateRequest{Title: "Users"})
	require.NoError(t, err)

	userID := uuid.Must(uuid.NewV4())
	resp, err := store.SubmitResponse(ctx, q.ID, survey.SubmitRequest{
		UserID:  &userID,
		Answers: map[string]json.RawMessage{"q1": json.RawMessage(`1`)},
	})
	require.NoError(t, err)

	var stored uuid.NullUUID
	err = store.DB.QueryRow("SELECT user_id FROM response WHERE id = ?", resp.ID).Scan(&stored)
	require.NoError(t, err)
	require.True(t, stored.Valid)
	assert.Equal(t, userID, stored.UUID)
}

func TestSubmitResponseUnknownQuestionnaire(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SubmitResponse(context.Background(), uuid.Must(uuid.NewV4()), survey.SubmitRequest{
		Answers: map[string]json.RawMessage{"q1": json.RawMessage(`1`)},
	})
	assert.ErrorIs(t, err, survey.ErrNotFound)
	assert.Equal(t, 0, countRows(t, store.DB, "response"))
}

func TestSubmitResponseRejectsMissingAnswers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	q, err := store.Create(ctx, survey.CreateRequest{Title: "No answers"})
	require.NoError(t, err)

	_, err = store.SubmitResponse(ctx, q.ID, survey.SubmitRequest{})
	assert.ErrorIs(t, err, survey.ErrInvalid)
	assert.Equal(t, 0, countRows(t, store.DB, "response"))
}

func TestSubmitResponseRejectsMalformedValueBeforeWriting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	q, err := store.Create(ctx, survey.CreateRequest{Title: "Broken value"})
	require.NoError(t, err)

	_, err = store.SubmitResponse(ctx, q.ID, survey.SubmitRequest{
		Answers: map[string]json.RawMessage{
			"ok":     json.RawMessage(`1`),
			"broken": json.RawMessage(`{"a":`),
		},
	})
	assert.ErrorIs(t, err, survey.ErrInvalid)
	assert.Equal(t, 0, countRows(t, store.DB, "response"))
	assert.Equal(t, 0, countRows(t, store.DB, "response_item"))
}
