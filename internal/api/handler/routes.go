package handler

import (
	"net/http"

	"github.com/vfg2006/sus-dashboard-api/internal/api/handler/router"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/dashboard"
	"github.com/vfg2006/sus-dashboard-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
	}
}

func Dashboard(service dashboard.Dashboarder) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/dashboard",
			Method:  http.MethodGet,
			Handler: GetDashboard(service),
		},
		{
			Path:    "/v1/municipalities",
			Method:  http.MethodGet,
			Handler: ListMunicipalities(service),
		},
		{
			Path:    "/v1/municipalities/:name",
			Method:  http.MethodGet,
			Handler: GetMunicipality(service),
		},
		{
			Path:    "/v1/municipality-names",
			Method:  http.MethodGet,
			Handler: ListMunicipalityNames(service),
		},
		{
			Path:    "/v1/ranking",
			Method:  http.MethodGet,
			Handler: GetRanking(service),
		},
		{
			Path:    "/v1/ranking/export",
			Method:  http.MethodGet,
			Handler: ExportRanking(service),
		},
		{
			Path:    "/v1/dataset",
			Method:  http.MethodGet,
			Handler: GetDataset(service),
		},
	}
}

func DatasetReload(reloader DatasetReloader, authService authenticating.Authenticator) []router.Route {
	adminOnly := []func(http.Handler) http.Handler{
		middleware.AuthMiddleware(authService),
		middleware.AdminOnly(),
	}

	return []router.Route{
		{
			Path:        "/v1/dataset/reload",
			Method:      http.MethodPost,
			Handler:     ReloadDataset(reloader),
			Middlewares: adminOnly,
		},
		{
			Path:        "/v1/dataset/reload/status",
			Method:      http.MethodGet,
			Handler:     GetReloadStatus(reloader),
			Middlewares: adminOnly,
		},
	}
}
