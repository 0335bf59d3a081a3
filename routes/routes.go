package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jtammen/carbon-tracker/app"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Route("/questionnaires", func(r chi.Router) {
		r.Post("/", CreateQuestionnaire(app))
		r.Get("/", ListQuestionnaires(app))
		r.Get("/{id}", GetQuestionnaireById(app))
		r.Post("/{id}/publish", PublishQuestionnaire(app))
		r.Post("/{id}/responses", SubmitResponse(app))

		r.Get("/families/{canonicalId}/active", GetActiveQuestionnaire(app))
		r.Post("/families/{canonicalId}/publish", PublishFamily(app))
	})

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}
