package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/honeynil/SocialWorld-web/internal/gate"
	"github.com/honeynil/SocialWorld-web/internal/handler"
	"github.com/honeynil/SocialWorld-web/internal/infrastructure/auth"
	"github.com/honeynil/SocialWorld-web/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

var registerOnce sync.Once

func registerMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter, RequestDuration)
	})
}

type Options struct {
	Sessions repository.SessionBackend
	Cookie   auth.CookieOptions
	Gate     *gate.Gate
	Metrics  http.Handler
}

func SetupRouter(h *handler.Handler, opts Options) *mux.Router {
	registerMetrics()

	r := mux.NewRouter()
	r.Use(metricsMiddleware)

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics).Methods("GET")
	}
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")

	// Всё остальное привязано к сессии браузера
	app := r.NewRoute().Subrouter()
	app.Use(auth.SessionMiddleware(opts.Sessions, opts.Cookie))

	// Защищённые роуты проходят через гейт
	protected := app.NewRoute().Subrouter()
	protected.Use(auth.GateMiddleware(opts.Gate))
	h.RegisterProtectedRoutes(protected)

	h.RegisterPublicRoutes(app)
	return r
}

// metricsMiddleware labels by route template so path params don't blow up cardinality.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "unmatched"
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}

		recorder := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)

		if recorder.status == 0 {
			recorder.status = http.StatusOK
		}
		RequestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(recorder.status)).Inc()
		RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder для захвата статуса ответа
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
