//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "servingd/docs"
)

// MountSwagger serves the generated OpenAPI UI under /docs. Enabled with
// -tags=swagger so default builds stay free of the UI assets.
func MountSwagger(r chi.Router) {
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))
}
