package handler

import (
	"net/http"
	"sync"

	"hotel/config"
	"hotel/di"
	"hotel/shared/logger"
	transportHTTP "hotel/transport/http"
)

var (
	server *transportHTTP.HTTP
	boot   sync.Once
)

// Handler is the serverless entrypoint. The dependency graph is built on the
// first invocation and reused while the instance stays warm.
func Handler(w http.ResponseWriter, r *http.Request) {
	boot.Do(func() {
		logger.InitLogger()

		cfg := config.Get()
		logger.Configure(cfg)

		server = di.InitializeService()
	})

	r.RequestURI = r.URL.String()
	server.ServeHTTP(w, r)
}
