package server

import (
	_ "embed"
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.json
var openAPIDoc []byte

const docsPath = "/api-docs/openapi.json"

// mountDocs serves the OpenAPI document and a Swagger UI reading it
func mountDocs(r *mux.Router) {
	r.HandleFunc(docsPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(openAPIDoc)
	}).Methods(http.MethodGet)
	r.Handle("/api-docs", http.RedirectHandler("/api-docs/index.html", http.StatusMovedPermanently))
	r.PathPrefix("/api-docs/").Handler(httpSwagger.Handler(httpSwagger.URL(docsPath)))
}
