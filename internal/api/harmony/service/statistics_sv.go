package harmonyService

import (
	"StorySignGolang/internal/api/harmony"
	"StorySignGolang/internal/entity"
	"math"
	"sort"

	"golang.org/x/net/context"
)

const (
	topEmotionCount    = 3
	recentSessionCount = 5
	progressTrendLen   = 10
)

// GetUserStatistics aggregates over all completed in-memory sessions,
// optionally filtered by user. This is a full scan per call; sessions live
// in memory and are bounded by the idle sweep, so the set stays small.
func (s *harmonyService) GetUserStatistics(ctx context.Context, userID string) harmony.UserStatisticsResponse {
	completed := s.repo.Sessions.Completed(ctx, userID)

	resp := harmony.UserStatisticsResponse{
		UserID:         userID,
		TotalSessions:  len(completed),
		TopEmotions:    []harmony.PracticedEmotion{},
		RecentSessions: []harmony.RecentSession{},
		ProgressTrend:  []int{},
	}
	if len(completed) == 0 {
		return resp
	}

	// Oldest first so the progress trend reads forward in time.
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].Final.CompletedAt.Before(completed[j].Final.CompletedAt)
	})

	accuracySum := 0.0
	practiced := make(map[entity.EmotionCategory]int)
	for _, session := range completed {
		accuracySum += session.Final.AccuracyPercentage
		practiced[session.TargetEmotion]++
	}
	resp.AverageAccuracy = math.Round(accuracySum/float64(len(completed))*10) / 10

	for _, category := range entity.EmotionOrder {
		if count, ok := practiced[category]; ok {
			resp.TopEmotions = append(resp.TopEmotions, harmony.PracticedEmotion{Emotion: category, Sessions: count})
		}
	}
	sort.SliceStable(resp.TopEmotions, func(i, j int) bool {
		return resp.TopEmotions[i].Sessions > resp.TopEmotions[j].Sessions
	})
	if len(resp.TopEmotions) > topEmotionCount {
		resp.TopEmotions = resp.TopEmotions[:topEmotionCount]
	}

	for i := len(completed) - 1; i >= 0 && len(resp.RecentSessions) < recentSessionCount; i-- {
		session := completed[i]
		resp.RecentSessions = append(resp.RecentSessions, harmony.RecentSession{
			SessionID:          session.ID,
			TargetEmotion:      session.TargetEmotion,
			AccuracyPercentage: session.Final.AccuracyPercentage,
			SessionScore:       session.Final.SessionScore,
			CompletedAt:        session.Final.CompletedAt,
		})
	}

	trendStart := 0
	if len(completed) > progressTrendLen {
		trendStart = len(completed) - progressTrendLen
	}
	for _, session := range completed[trendStart:] {
		resp.ProgressTrend = append(resp.ProgressTrend, session.Final.SessionScore)
	}

	return resp
}
