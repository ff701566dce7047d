package config

import (
	"StorySignGolang/database/postgres"
	harmonyHandler "StorySignGolang/internal/api/harmony/handler"
	harmonyRepository "StorySignGolang/internal/api/harmony/repository"
	harmonyService "StorySignGolang/internal/api/harmony/service"
	"StorySignGolang/internal/middleware"
	"StorySignGolang/pkg/emotion"
	"StorySignGolang/pkg/landmark"
	"StorySignGolang/pkg/redis"
	"StorySignGolang/pkg/s3"
	"StorySignGolang/pkg/utils"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	redisServer redis.IRedis
	detector    landmark.Detector
	s3Client    s3.ItfS3
	harmonyRepo *harmonyRepository.Repository
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.detector == nil {
		return nil, fmt.Errorf("landmark detector is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

// WithDatabase connects to Postgres for the completed-session archive. The
// archive is optional: with no DB_HOST configured the server runs on the
// in-memory store and snapshot cache alone.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		if os.Getenv("DB_HOST") == "" {
			if s.log != nil {
				s.log.Warn("DB_HOST not set, session archive disabled")
			}
			return nil
		}

		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithDetector() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before detector")
		}
		detector, err := landmark.NewFromEnv(s.log)
		if err != nil {
			return fmt.Errorf("failed to create landmark detector: %w", err)
		}
		s.detector = detector
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		if os.Getenv("AWS_BUCKET_NAME") == "" {
			if s.log != nil {
				s.log.Warn("AWS_BUCKET_NAME not set, session report export disabled")
			}
			return nil
		}

		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Harmony Domain
	s.harmonyRepo = harmonyRepository.New(s.db, s.log, harmonyRepository.Config{
		SessionTTL:    envDuration("HARMONY_SESSION_TTL", 30*time.Minute),
		SweepInterval: envDuration("HARMONY_SWEEP_INTERVAL", 5*time.Minute),
	})
	scorer := emotion.NewScorer(nil, s.log)
	harmonyServices := harmonyService.New(s.log, s.harmonyRepo, s.detector, scorer, s.redisServer, s.s3Client, s.utils)
	harmonyHandlers := harmonyHandler.New(s.log, s.validator, s.middleware, harmonyServices, s.utils)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, harmonyHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops the HTTP listener and releases the session store sweep and
// the detector connection.
func (s *Server) Shutdown() {
	if err := s.engine.Shutdown(); err != nil {
		s.log.Errorf("Error shutting down server: %v", err)
	}

	if s.harmonyRepo != nil {
		s.harmonyRepo.Close()
	}
	if s.detector != nil {
		if err := s.detector.Close(); err != nil {
			s.log.Errorf("Error closing detector: %v", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Errorf("Error closing database: %v", err)
		}
	}
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
