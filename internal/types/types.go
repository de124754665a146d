package types

import (
	"context"

	"github.com/Adithya-charan/docuExtract/internal/models"
)

// ProgressFunc receives a progress value in 0..100 and a log line.
type ProgressFunc func(progress int, message string)

// Core interfaces
type Ingestor interface {
	Ingest(ctx context.Context, doc models.Document, progress ProgressFunc) (*models.Content, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, system string, content *models.Content) (string, error)
}

// Backend is the persistence surface shared by the remote service client,
// the on-device store and the hybrid decorator over both.
type Backend interface {
	Login(ctx context.Context, email, password string) (*models.UserAccount, error)
	Signup(ctx context.Context, user models.UserAccount) error
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	Stats(ctx context.Context) (*models.AdminStats, error)
	SaveAnalysis(ctx context.Context, userID string, result models.AnalysisResult) error
	History(ctx context.Context, userID string) ([]models.AnalysisResult, error)
}

type StatsSource interface {
	Stats(ctx context.Context) (*models.AdminStats, error)
}

type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}
