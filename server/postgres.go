package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrNotOwner is returned when saving over an analysis another user owns.
	ErrNotOwner = errors.New("analysis belongs to another user")
)

const uniqueViolation = "23505"

type PostgresConfig struct {
	ConnString string
	VectorDim  int
}

// Postgres keeps accounts and analyses. Each analysis row carries the
// result as JSONB and an optional summary embedding.
type Postgres struct {
	config PostgresConfig
	pool   *pgxpool.Pool
}

func NewPostgres(ctx context.Context, config PostgresConfig) (*Postgres, error) {
	if config.VectorDim == 0 {
		config.VectorDim = 768 // nomic-embed-text
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pg := &Postgres{config: config, pool: pool}
	if err := pg.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pg, nil
}

func (pg *Postgres) initialize(ctx context.Context) error {
	// Enable pgvector extension
	if _, err := pg.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			phone TEXT,
			plan TEXT NOT NULL DEFAULT 'free',
			role TEXT NOT NULL DEFAULT 'user',
			joined_at BIGINT NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			result JSONB NOT NULL,
			summary_embedding vector(%d),
			saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, pg.config.VectorDim),
		`CREATE INDEX IF NOT EXISTS analyses_user_idx ON analyses (user_id, saved_at DESC)`,
		`CREATE INDEX IF NOT EXISTS analyses_embedding_idx
			ON analyses
			USING ivfflat (summary_embedding vector_cosine_ops)
			WITH (lists = 100)`,
	}
	for _, stmt := range statements {
		if _, err := pg.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

func (pg *Postgres) Ping(ctx context.Context) error {
	return pg.pool.Ping(ctx)
}

func (pg *Postgres) Close() {
	if pg.pool != nil {
		pg.pool.Close()
	}
}

// FindUser returns the stored account, password hash included.
func (pg *Postgres) FindUser(ctx context.Context, email string) (*models.UserAccount, error) {
	row := pg.pool.QueryRow(ctx, `
		SELECT id, name, email, password, COALESCE(phone, ''), plan, role, joined_at
		FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

func (pg *Postgres) CreateUser(ctx context.Context, u models.UserAccount) error {
	_, err := pg.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password, phone, plan, role, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Name, strings.ToLower(u.Email), u.Password, u.Phone, string(u.Plan), string(u.Role), u.JoinedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return models.NewDuplicateEmailError(u.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (pg *Postgres) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := pg.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`,
		strings.ToLower(strings.TrimSpace(email))).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// Users returns every account in signup order.
func (pg *Postgres) Users(ctx context.Context) ([]models.UserAccount, error) {
	rows, err := pg.pool.Query(ctx, `
		SELECT id, name, email, password, COALESCE(phone, ''), plan, role, joined_at
		FROM users ORDER BY joined_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.UserAccount
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (pg *Postgres) CountAnalyses(ctx context.Context) (int, error) {
	var n int
	if err := pg.pool.QueryRow(ctx, `SELECT count(*) FROM analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return n, nil
}

// SaveAnalysis upserts by result ID. Saving an existing ID moves it to the
// front of its owner's history; an analysis never changes owner. A nil
// embedding stores NULL.
func (pg *Postgres) SaveAnalysis(ctx context.Context, userID string, r models.AnalysisResult, embedding []float32) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}

	var vec *pgvector.Vector
	if len(embedding) > 0 {
		v := pgvector.NewVector(embedding)
		vec = &v
	}

	tag, err := pg.pool.Exec(ctx, `
		INSERT INTO analyses (id, user_id, result, summary_embedding, saved_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET
			result = EXCLUDED.result,
			summary_embedding = EXCLUDED.summary_embedding,
			saved_at = now()
		WHERE analyses.user_id = EXCLUDED.user_id`,
		r.ID, userID, data, vec)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotOwner
	}
	return nil
}

func (pg *Postgres) History(ctx context.Context, userID string, limit int) ([]models.AnalysisResult, error) {
	rows, err := pg.pool.Query(ctx, `
		SELECT result FROM analyses
		WHERE user_id = $1
		ORDER BY saved_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return scanResults(rows)
}

// Related returns the analyses whose summaries are nearest to the one of id
// by cosine distance.
func (pg *Postgres) Related(ctx context.Context, id string, limit int) ([]models.AnalysisResult, error) {
	rows, err := pg.pool.Query(ctx, `
		SELECT a.result
		FROM analyses a, analyses target
		WHERE target.id = $1
			AND a.id <> target.id
			AND a.summary_embedding IS NOT NULL
			AND target.summary_embedding IS NOT NULL
		ORDER BY a.summary_embedding <=> target.summary_embedding
		LIMIT $2`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query related analyses: %w", err)
	}
	return scanResults(rows)
}

func scanUser(row pgx.Row) (*models.UserAccount, error) {
	var u models.UserAccount
	var plan, role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Phone, &plan, &role, &u.JoinedAt); err != nil {
		return nil, err
	}
	u.Plan = models.Plan(plan)
	u.Role = models.Role(role)
	return &u, nil
}

func scanResults(rows pgx.Rows) ([]models.AnalysisResult, error) {
	defer rows.Close()

	results := []models.AnalysisResult{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		var r models.AnalysisResult
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to decode analysis: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
