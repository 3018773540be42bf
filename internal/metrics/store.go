package metrics

import (
	"database/sql"
	"time"

	"bodygoal/internal/shared"
)

// GenerationMetric records metadata for a single generation attempt.
type GenerationMetric struct {
	ArtifactType     string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Outcome          string
	Timestamp        time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// timeLayout is the text format timestamps are stored in. SQLite's date
// functions only understand this shape; binding time.Time directly would
// make date(timestamp) return NULL.
const timeLayout = "2006-01-02 15:04:05"

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(m GenerationMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO generation_metrics (artifact_type, model, prompt_tokens, completion_tokens, latency_ms, outcome, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ArtifactType, m.Model, m.PromptTokens, m.CompletionTokens, m.LatencyMS, m.Outcome, ts.UTC().Format(timeLayout),
	)
	return err
}

// RecordMeta records metrics directly from shared.GenerationMeta.
func (s *Store) RecordMeta(meta shared.GenerationMeta) error {
	return s.Record(MapUsage(meta.ArtifactType, meta.Usage, meta.Latency, meta.Outcome))
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalGenerated  int
}

// GetDailyUsage retrieves usage for the last N days.
func (s *Store) GetDailyUsage(days int) ([]DailyUsage, error) {
	since := time.Now().AddDate(0, 0, -days).UTC().Format(timeLayout)
	rows, err := s.db.Query(`
		SELECT date(timestamp) AS day, COUNT(*), SUM(prompt_tokens), SUM(completion_tokens)
		FROM generation_metrics
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		var prompt, completion sql.NullFloat64
		if err := rows.Scan(&u.Date, &u.TotalGenerated, &prompt, &completion); err != nil {
			return nil, err
		}
		if prompt.Valid {
			u.TotalPrompt = int(prompt.Float64)
		}
		if completion.Valid {
			u.TotalCompletion = int(completion.Float64)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(olderThanDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -olderThanDays).UTC().Format(timeLayout)
	res, err := s.db.Exec(`DELETE FROM generation_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MapUsage helper to convert shared.TokenUsage to GenerationMetric. The
// timestamp is left zero; Record fills it in.
func MapUsage(artifactType string, usage shared.TokenUsage, latency time.Duration, outcome string) GenerationMetric {
	return GenerationMetric{
		ArtifactType:     artifactType,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
		Outcome:          outcome,
	}
}
