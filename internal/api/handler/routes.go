package handler

import (
	"net/http"

	"github.com/vfg2006/ppc-automation/internal/api/handler/router"
	"github.com/vfg2006/ppc-automation/pkg/metrics"
)

func Healthcheck(service RunService) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(service),
		},
	}
}

func Metrics() []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: metrics.Handler(),
		},
	}
}

func Runs(service RunService, lister AuditLister) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/runs",
			Method:  http.MethodPost,
			Handler: TriggerRun(service),
		},
		{
			Path:    "/v1/runs/last",
			Method:  http.MethodGet,
			Handler: LastRun(service),
		},
		{
			Path:    "/v1/audit/:id",
			Method:  http.MethodGet,
			Handler: RunAudit(lister),
		},
	}
}
