package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/reslab/attendance-backend-go/internal/handler/http/middleware"
	"github.com/reslab/attendance-backend-go/internal/pkg/jwt"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	DeviceKey      string
	JWTService     jwt.Service
}

type Handlers struct {
	Auth           AuthHandler
	Scan           ScanHandler
	Device         DeviceHandler
	Member         MemberHandler
	Attendance     AttendanceHandler
	Reconciliation ReconciliationHandler
	Dashboard      DashboardHandler
	Stream         StreamHandler
}

func NewRouter(cfg RouterConfig, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", middleware.DeviceKeyHeader},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	// Scanners usually sit behind the lab's reverse proxy.
	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
		// The stream holds its request open for the whole session.
		Skip: func(req *http.Request, respStatus int) bool {
			return req.URL.Path == "/api/v1/stream"
		},
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)

		// Scanner endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.DeviceKey(cfg.DeviceKey))
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/rfid/scan", h.Scan.Scan)
			r.Post("/devices/heartbeat", h.Device.Heartbeat)
		})

		// Token checked inside the handler
		r.Get("/stream", h.Stream.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(cfg.JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(cfg.JWTService.JWTAuth()))

			r.Route("/auth", func(r chi.Router) {
				r.Get("/me", h.Auth.Me)
				r.Get("/sse-token", h.Auth.SSEToken)
			})

			r.Get("/devices", h.Device.List)
			r.Get("/scan-logs", h.Scan.ListLogs)

			r.Route("/members", func(r chi.Router) {
				r.Get("/", h.Member.ListMembers)
				r.Post("/", h.Member.CreateMember)
				r.Get("/rfid/{rfid}", h.Member.GetMemberByRFID)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Member.GetMember)
					r.Put("/", h.Member.UpdateMember)
					r.Delete("/", h.Member.DeleteMember)
					r.Post("/activate", h.Member.ActivateMember)
					r.Get("/attendances", h.Member.ListMemberAttendance)
				})
			})

			r.Route("/attendances", func(r chi.Router) {
				r.Get("/", h.Attendance.List)
				r.Post("/", h.Attendance.Create)
				r.Get("/today", h.Attendance.Today)
				r.Get("/export", h.Attendance.Export)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Attendance.Get)
					r.Put("/", h.Attendance.Update)
					r.Delete("/", h.Attendance.Delete)
				})
			})

			r.Route("/reconciliation", func(r chi.Router) {
				r.Post("/run", h.Reconciliation.Run)
				r.Post("/duplicates", h.Reconciliation.CleanupDuplicates)
				r.Post("/auto-checkout", h.Reconciliation.AutoCheckout)
				r.Post("/absences", h.Reconciliation.SynthesizeAbsences)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/summary", h.Dashboard.GetSummary)
				r.Get("/weekly", h.Dashboard.GetWeekly)
			})
		})
	})
	return r
}
