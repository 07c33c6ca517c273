package app

import (
	"net/http"

	"github.com/delat04/agda/internal/config"
	"github.com/delat04/agda/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Propagate X-User-Id header into context for downstream services
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			userIdHeader := req.Header.Get("X-User-Id")
			if userIdHeader != "" {
				log.Debugf("request user: %s", userIdHeader)
				ctx = user.WithId(ctx, userIdHeader)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
