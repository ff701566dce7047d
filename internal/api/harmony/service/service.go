package harmonyService

import (
	"StorySignGolang/internal/api/harmony"
	harmonyRepository "StorySignGolang/internal/api/harmony/repository"
	"StorySignGolang/pkg/emotion"
	"StorySignGolang/pkg/landmark"
	redisPkg "StorySignGolang/pkg/redis"
	s3Pkg "StorySignGolang/pkg/s3"
	"StorySignGolang/pkg/utils"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IHarmonyService interface {
	CreateSession(ctx context.Context, req harmony.CreateSessionRequest) (harmony.CreateSessionResponse, error)
	ProcessFrame(ctx context.Context, sessionID string, frameData string) harmony.FrameResult
	FinalizeSession(ctx context.Context, sessionID string, req harmony.FinalizeSessionRequest) (harmony.SessionSnapshot, error)
	DeleteSession(ctx context.Context, sessionID string) bool
	GetSessionSnapshot(ctx context.Context, sessionID string) (harmony.SessionSnapshot, error)
	GetUserStatistics(ctx context.Context, userID string) harmony.UserStatisticsResponse
}

type harmonyService struct {
	log         *logrus.Logger
	repo        *harmonyRepository.Repository
	detector    landmark.Detector
	scorer      *emotion.Scorer
	redisServer redisPkg.IRedis
	s3Client    s3Pkg.ItfS3
	utils       utils.IUtils
	detectSlots chan struct{}
}

const defaultDetectWorkers = 4

func New(
	log *logrus.Logger,
	repo *harmonyRepository.Repository,
	detector landmark.Detector,
	scorer *emotion.Scorer,
	redisServer redisPkg.IRedis,
	s3Client s3Pkg.ItfS3,
	utils utils.IUtils,
) IHarmonyService {
	workers := defaultDetectWorkers
	if raw := os.Getenv("HARMONY_DETECT_WORKERS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			workers = n
		}
	}

	return &harmonyService{
		log:         log,
		repo:        repo,
		detector:    detector,
		scorer:      scorer,
		redisServer: redisServer,
		s3Client:    s3Client,
		utils:       utils,
		detectSlots: make(chan struct{}, workers),
	}
}
