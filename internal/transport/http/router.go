package http

import (
	"net/http"
	"time"

	"quiz-stats-service/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewRouter mounts the REST API, the stats websocket and the operational endpoints.
func NewRouter(service *app.QuizService, log logrus.FieldLogger, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(log), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	quizzes := NewQuizHandler(service, log)
	r.Route("/api/quizzes", func(r chi.Router) {
		r.Get("/", quizzes.List)
		r.Post("/", quizzes.Create)
		r.Route("/{quizID}", func(r chi.Router) {
			r.Get("/", quizzes.Get)
			r.Get("/edit", quizzes.GetForEdit)
			r.Put("/", quizzes.Update)
			r.Delete("/", quizzes.Delete)
			r.Post("/participations", quizzes.Submit)
			r.Get("/stats", quizzes.Stats)
		})
	})

	ws := NewWSHandler(service, log)
	r.Get("/ws/stats", ws.ServeWS)
	return r
}

func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
			}).Debug("request served")
		})
	}
}
