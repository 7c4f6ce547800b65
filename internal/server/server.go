package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/shuyan0723/study--student-mangement/config"
	"github.com/shuyan0723/study--student-mangement/internal/auth"
	"github.com/shuyan0723/study--student-mangement/internal/db"
	"github.com/shuyan0723/study--student-mangement/internal/handlers"
	"github.com/shuyan0723/study--student-mangement/internal/notify"
	"github.com/shuyan0723/study--student-mangement/internal/services"
	"github.com/shuyan0723/study--student-mangement/internal/storage"
	"github.com/shuyan0723/study--student-mangement/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	notifier   *notify.Notifier
	log        *logrus.Logger
}

// New constructs a Server: database, event bus, object storage, and the
// full route table behind the auth gate.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	log := newLogger(cfg.Log)

	if cfg.Auth.AccessSecret == "" || cfg.Auth.RefreshSecret == "" {
		return nil, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	notifier, err := newNotifier(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	objStore, err := newObjectStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		_ = notifier.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	studentRepo := store.NewStudentRepository(dbConn)
	teacherRepo := store.NewTeacherRepository(dbConn)
	courseRepo := store.NewCourseRepository(dbConn)
	gradeRepo := store.NewGradeRepository(dbConn)
	appealRepo := store.NewAppealRepository(dbConn)
	messageRepo := store.NewMessageRepository(dbConn)
	noticeRepo := store.NewNoticeRepository(dbConn)

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenIssuer(cfg.Auth, nil)

	authService := services.NewAuthService(
		userRepo, studentRepo, teacherRepo,
		hasher, tokens, notifier, log,
		cfg.Auth.MaxAttempts, cfg.Auth.LockDuration,
	)
	studentService := services.NewStudentService(studentRepo)
	teacherService := services.NewTeacherService(teacherRepo)
	courseService := services.NewCourseService(courseRepo)
	gradeService := services.NewGradeService(gradeRepo)
	appealService := services.NewAppealService(appealRepo)
	messageService := services.NewMessageService(messageRepo)
	noticeService := services.NewNoticeService(noticeRepo, notifier, log)
	exportService := services.NewExportService(gradeRepo, studentRepo, objStore)

	gate := handlers.RequireAuth(authService, log)
	optional := handlers.OptionalAuth(authService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		handlers.RequestLogger(log),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService, log)
	})
	router.Route("/students", func(r chi.Router) {
		handlers.StudentRouter(r, studentService, gate, log)
	})
	router.Route("/teachers", func(r chi.Router) {
		handlers.TeacherRouter(r, teacherService, gate, log)
	})
	router.Route("/courses", func(r chi.Router) {
		handlers.CourseRouter(r, courseService, gate, log)
	})
	router.Route("/grades", func(r chi.Router) {
		handlers.GradeRouter(r, gradeService, studentService, gate, log)
	})
	router.Route("/appeals", func(r chi.Router) {
		handlers.AppealRouter(r, appealService, studentService, gate, log)
	})
	router.Route("/messages", func(r chi.Router) {
		handlers.MessageRouter(r, messageService, gate, log)
	})
	router.Route("/notices", func(r chi.Router) {
		handlers.NoticeRouter(r, noticeService, gate, optional, log)
	})
	router.Route("/profile", func(r chi.Router) {
		handlers.ProfileRouter(r, authService, exportService, gate, log)
	})
	router.Route("/reports", func(r chi.Router) {
		handlers.ReportRouter(r, exportService, gate, log)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		notifier:   notifier,
		log:        log,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests, then closes the database and
// event-bus connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.notifier != nil {
		_ = s.notifier.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(level)
	}
	return log
}

// newNotifier selects the event-bus backend. "none" runs without one;
// events are then dropped silently.
func newNotifier(ctx context.Context, cfg config.Config) (*notify.Notifier, error) {
	switch cfg.MQBackend {
	case "rabbitmq":
		publisher, err := notify.NewRabbitMQPublisher(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		return notify.New(publisher), nil
	case "pubsub":
		publisher, err := notify.NewPubSubPublisher(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("pubsub: %w", err)
		}
		return notify.New(publisher), nil
	case "none", "":
		return notify.New(nil), nil
	default:
		return nil, fmt.Errorf("unknown MQ_BACKEND %q", cfg.MQBackend)
	}
}

// newObjectStorage selects the object-store backend. With "none" the
// export and avatar endpoints stay registered but refuse requests.
func newObjectStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch cfg.ObjStore {
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		objStore := storage.NewStorage(client)
		if err := objStore.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		return objStore, nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		objStore := storage.NewStorage(client)
		if err := objStore.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		return objStore, nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown OBJECT_STORE %q", cfg.ObjStore)
	}
}
