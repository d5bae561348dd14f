package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	coreservices "github.com/iota-uz/mailstock/modules/core/services"
	"github.com/iota-uz/mailstock/pkg/application"
	"github.com/iota-uz/mailstock/pkg/configuration"
	"github.com/iota-uz/mailstock/pkg/httpapi"
	"github.com/iota-uz/mailstock/pkg/middleware"
	"github.com/iota-uz/mailstock/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

// Default assembles the middleware stack and HTTP server. Modules must be
// loaded first; the auth middleware pulls the auth service from the
// application registry.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	authService := app.Service(coreservices.AuthService{}).(*coreservices.AuthService)

	app.RegisterMiddleware(
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()),
		middleware.WithPool(options.Pool),
		middleware.RequestParams(),
		middleware.Authorize(authService),
	)

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	app.RegisterControllers(healthController{})

	return server.NewHTTPServer(app, notFound, methodNotAllowed), nil
}

type healthController struct{}

func (healthController) Key() string {
	return "/health"
}

func (healthController) Register(r *mux.Router) {
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_ = httpapi.WriteMessage(w, http.StatusOK, "ok")
	}).Methods(http.MethodGet)
}
