package routes_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitResponseEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	q := createQuestionnaire(t, handler, map[string]any{
		"title":      "Submission",
		"definition": map[string]any{"a": 1},
	})

	rec := do(t, handler, http.MethodPost, "/api/questionnaires/"+q.ID.String()+"/responses", map[string]any{
		"userId": uuid.Must(uuid.NewV4()),
		"answers": map[string]any{
			"q1": 3,
			"q2": "red",
			"q3": []int{1, 2},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEqual(t, uuid.Nil, body.ID)
}

func TestSubmitResponseMalformedAnswers(t *testing.T) {
	handler := newTestHandler(t)

	q := createQuestionnaire(t, handler, map[string]any{"title": "Malformed"})

	rec := do(t, handler, http.MethodPost, "/api/questionnaires/"+q.ID.String()+"/responses", map[string]any{
		"answers": []any{1, 2, 3},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, handler, http.MethodPost, "/api/questionnaires/"+q.ID.String()+"/responses", map[string]any{
		"userId": uuid.Must(uuid.NewV4()),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitResponseUnknownQuestionnaireEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	path := "/api/questionnaires/" + uuid.Must(uuid.NewV4()).String() + "/responses"
	rec := do(t, handler, http.MethodPost, path, map[string]any{
		"answers": map[string]any{"q1": 1},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
