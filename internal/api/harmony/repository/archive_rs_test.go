package harmonyRepository_test

import (
	harmonyRepository "StorySignGolang/internal/api/harmony/repository"
	"StorySignGolang/internal/entity"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func completedSession(withFinal bool) entity.EmotionSession {
	session := entity.EmotionSession{
		ID:              "01J9TESTSESSIONID",
		UserID:          "user-1",
		TargetEmotion:   entity.EmotionHappy,
		DifficultyLevel: entity.DifficultyNormal,
		Status:          entity.SessionCompleted,
		CreatedAt:       time.Now(),
	}
	if withFinal {
		session.Final = &entity.FinalStatistics{
			TotalDetections:    3,
			TargetMatches:      2,
			AccuracyPercentage: 66.7,
			AverageConfidence:  0.8,
			SessionScore:       71,
			DurationMs:         30000,
			CompletedAt:        time.Now(),
		}
	}
	return session
}

func Test_ArchiveRepository_InsertCompletedSession(t *testing.T) {

	tests := []struct {
		name       string
		session    entity.EmotionSession
		beforeTest func(sqlmock.Sqlmock)
		wantErr    bool
	}{
		{
			name:    "fail archive session: no final statistics",
			session: completedSession(false),
			wantErr: true,
		},
		{
			name:    "fail archive session: database error",
			session: completedSession(true),
			beforeTest: func(mockSQL sqlmock.Sqlmock) {
				mockSQL.
					ExpectExec("INSERT INTO harmony_session_archive").
					WillReturnError(errors.New("db error"))
			},
			wantErr: true,
		},
		{
			name:    "success archive session",
			session: completedSession(true),
			beforeTest: func(mockSQL sqlmock.Sqlmock) {
				mockSQL.
					ExpectExec("INSERT INTO harmony_session_archive").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB, mockSQL, _ := sqlmock.New()
			defer mockDB.Close()

			db := sqlx.NewDb(mockDB, "sqlmock")

			log := logrus.New()
			log.SetOutput(io.Discard)

			repo := harmonyRepository.New(db, log, harmonyRepository.Config{})
			defer repo.Close()

			if tt.beforeTest != nil {
				tt.beforeTest(mockSQL)
			}

			err := repo.Archive.InsertCompletedSession(context.Background(), tt.session)

			if (err != nil) != tt.wantErr {
				t.Errorf("archiveRepository.InsertCompletedSession() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err := mockSQL.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet SQL expectations: %v", err)
			}
		})
	}
}

func Test_Repository_ArchiveNilWithoutDatabase(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	repo := harmonyRepository.New(nil, log, harmonyRepository.Config{})
	defer repo.Close()

	if repo.Archive != nil {
		t.Error("Archive should be nil when no database is configured")
	}
	if repo.Sessions == nil {
		t.Error("Sessions store missing")
	}
}
