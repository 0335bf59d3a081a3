package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gofrs/uuid"
	"github.com/jtammen/carbon-tracker/app"
	"github.com/jtammen/carbon-tracker/httpx"
	"github.com/jtammen/carbon-tracker/log"
	"github.com/jtammen/carbon-tracker/survey"
)

func CreateQuestionnaire(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := survey.CreateRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		questionnaire, err := app.Create(r.Context(), req)
		if err != nil {
			writeStoreError(w, "create_questionnaire", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, questionnaire)
	}
}

func ListQuestionnaires(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionnaires, err := app.List(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_questionnaires", err)
			return
		}

		render.JSON(w, r, questionnaires)
	}
}

func GetQuestionnaireById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlParamUUID(w, r, "id")
		if !ok {
			return
		}

		questionnaire, err := app.Get(r.Context(), id)
		if err != nil {
			writeStoreError(w, "get_questionnaire", err)
			return
		}

		render.JSON(w, r, questionnaire)
	}
}

func GetActiveQuestionnaire(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		canonicalId, ok := urlParamUUID(w, r, "canonicalId")
		if !ok {
			return
		}

		questionnaire, err := app.LatestActive(r.Context(), canonicalId)
		if err != nil {
			writeStoreError(w, "get_active_questionnaire", err)
			return
		}

		render.JSON(w, r, questionnaire)
	}
}

func PublishQuestionnaire(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlParamUUID(w, r, "id")
		if !ok {
			return
		}

		err := app.Publish(r.Context(), id)
		if err != nil {
			writeStoreError(w, "publish_questionnaire", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func PublishFamily(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		canonicalId, ok := urlParamUUID(w, r, "canonicalId")
		if !ok {
			return
		}

		sel := survey.PublishSelector{}
		err := render.DecodeJSON(r.Body, &sel)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = app.PublishFamily(r.Context(), canonicalId, sel)
		if err != nil {
			writeStoreError(w, "publish_family", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func urlParamUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.FromString(chi.URLParam(r, name))
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param."+name)
		return uuid.Nil, false
	}
	return id, true
}

// writeStoreError translates a survey error into the matching HTTP
// status, logging the internal ones.
func writeStoreError(w http.ResponseWriter, code string, err error) {
	switch {
	case errors.Is(err, survey.ErrInvalid):
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, code, "%s", err)
	case errors.Is(err, survey.ErrNotFound):
		httpx.LogNotFound(w, code, err)
	default:
		httpx.LogInternalError(w, code, err)
	}
}
