package routes

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/jtammen/carbon-tracker/app"
	"github.com/jtammen/carbon-tracker/httpx"
	"github.com/jtammen/carbon-tracker/log"
	"github.com/jtammen/carbon-tracker/survey"
)

func SubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionnaireId, ok := urlParamUUID(w, r, "id")
		if !ok {
			return
		}

		req := survey.SubmitRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		response, err := app.SubmitResponse(r.Context(), questionnaireId, req)
		if err != nil {
			writeStoreError(w, "submit_response", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": response.ID,
		})
	}
}
