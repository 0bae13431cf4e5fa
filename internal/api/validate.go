package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/devnullvoid/dungeondraw/pkg/interfaces"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// OpenAPIDocument returns the embedded API description.
func OpenAPIDocument() []byte {
	return append([]byte(nil), openAPIDocument...)
}

// loadDocument parses and validates the embedded API description.
func loadDocument(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to load api document: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid api document: %w", err)
	}

	return doc, nil
}

// requestValidator checks requests against the API description before they
// reach a handler.
type requestValidator struct {
	router routers.Router
	log    interfaces.Logger
}

func newRequestValidator(doc *openapi3.T, log interfaces.Logger) (*requestValidator, error) {
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create openapi router: %w", err)
	}

	return &requestValidator{router: router, log: log}, nil
}

// Middleware rejects requests that do not match their operation with 400.
// Requests for paths the description does not cover pass through unchecked.
func (v *requestValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := v.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}

		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			v.log.Debug("Rejected %s %s: %v", r.Method, r.URL.Path, err)
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}

		next.ServeHTTP(w, r)
	})
}
