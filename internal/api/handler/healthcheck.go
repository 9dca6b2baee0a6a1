package handler

import (
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/vfg2006/ppc-automation/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type healthResponse struct {
	Status  string    `json:"status"`
	Time    time.Time `json:"time"`
	Running bool      `json:"running"`
}

func HealthcheckHandler(service RunService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			Time:    time.Now().UTC(),
			Running: service.Running(),
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.L.WithError(err).Warn("api: erro ao escrever a resposta")
	}
}
