package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"ideaforge-workers/internal/models"
)

var ideaColumns = []string{
	"id", "entrepreneur_id", "entrepreneur", "title", "tagline", "description",
	"category", "stage", "current_progress", "problem_statement",
	"proposed_solution", "uniqueness", "target_audience", "market_size",
	"competitors", "customer_validation", "business_model", "demo_url",
	"team_background", "pitch_deck_url", "visibility", "status", "ai_score",
	"score_history", "views", "interests", "featured", "created_at", "updated_at",
}

type ideaRow struct {
	ID                 string         `db:"id"`
	EntrepreneurID     string         `db:"entrepreneur_id"`
	Entrepreneur       types.JSONText `db:"entrepreneur"`
	Title              string         `db:"title"`
	Tagline            string         `db:"tagline"`
	Description        string         `db:"description"`
	Category           string         `db:"category"`
	Stage              string         `db:"stage"`
	CurrentProgress    string         `db:"current_progress"`
	ProblemStatement   string         `db:"problem_statement"`
	ProposedSolution   string         `db:"proposed_solution"`
	Uniqueness         string         `db:"uniqueness"`
	TargetAudience     string         `db:"target_audience"`
	MarketSize         string         `db:"market_size"`
	Competitors        string         `db:"competitors"`
	CustomerValidation string         `db:"customer_validation"`
	BusinessModel      string         `db:"business_model"`
	DemoURL            string         `db:"demo_url"`
	TeamBackground     string         `db:"team_background"`
	PitchDeckURL       string         `db:"pitch_deck_url"`
	Visibility         string         `db:"visibility"`
	Status             string         `db:"status"`
	AIScore            sql.NullInt64  `db:"ai_score"`
	ScoreHistory       types.JSONText `db:"score_history"`
	Views              int            `db:"views"`
	Interests          types.JSONText `db:"interests"`
	Featured           bool           `db:"featured"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

// PostgresRepository keeps ideas in the ideas table. The author profile,
// score history and interests are JSONB columns.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository wraps an open connection; the schema is created by
// database.PostgresClient.Migrate.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get loads one idea or returns ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Idea, error) {
	var row ideaRow
	query := `SELECT ` + strings.Join(ideaColumns, ", ") + ` FROM ideas WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get idea %s: %w", id, err)
	}
	return row.toIdea()
}

// Add inserts a new idea row.
func (r *PostgresRepository) Add(ctx context.Context, idea *models.Idea) error {
	row, err := toRow(idea)
	if err != nil {
		return err
	}
	query := `INSERT INTO ideas (` + strings.Join(ideaColumns, ", ") + `) VALUES (:` +
		strings.Join(ideaColumns, ", :") + `)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert idea %s: %w", idea.ID, err)
	}
	return nil
}

// Update rewrites every column except id and created_at.
func (r *PostgresRepository) Update(ctx context.Context, idea *models.Idea) error {
	row, err := toRow(idea)
	if err != nil {
		return err
	}
	sets := make([]string, 0, len(ideaColumns)-2)
	for _, col := range ideaColumns {
		if col == "id" || col == "created_at" {
			continue
		}
		sets = append(sets, col+" = :"+col)
	}
	query := `UPDATE ideas SET ` + strings.Join(sets, ", ") + ` WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("update idea %s: %w", idea.ID, err)
	}
	return expectOneRow(res, idea.ID)
}

// AppendInterest appends in a single UPDATE guarded by a JSONB containment
// check, so concurrent appends from different investors both land and a
// repeat from the same investor matches no row.
func (r *PostgresRepository) AppendInterest(ctx context.Context, id string, interest models.Interest, updatedAt string) (*models.Idea, error) {
	item, err := json.Marshal([]models.Interest{interest})
	if err != nil {
		return nil, fmt.Errorf("encode interest: %w", err)
	}
	match, err := json.Marshal([]map[string]string{{"investor": interest.InvestorID}})
	if err != nil {
		return nil, fmt.Errorf("encode interest match: %w", err)
	}

	query := `UPDATE ideas SET interests = interests || $2::jsonb, updated_at = $3
		WHERE id = $1 AND NOT interests @> $4::jsonb
		RETURNING ` + strings.Join(ideaColumns, ", ")
	var row ideaRow
	err = r.db.GetContext(ctx, &row, query, id, string(item), parseTime(updatedAt), string(match))
	if errors.Is(err, sql.ErrNoRows) {
		exists, err := r.exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, ErrDuplicateInterest
	}
	if err != nil {
		return nil, fmt.Errorf("append interest to %s: %w", id, err)
	}
	return row.toIdea()
}

// RecordScore sets ai_score and appends to score_history in one statement.
func (r *PostgresRepository) RecordScore(ctx context.Context, id string, entry models.ScoreEntry) (*models.Idea, error) {
	item, err := json.Marshal([]models.ScoreEntry{entry})
	if err != nil {
		return nil, fmt.Errorf("encode score entry: %w", err)
	}

	query := `UPDATE ideas SET ai_score = $2, score_history = score_history || $3::jsonb, updated_at = $4
		WHERE id = $1
		RETURNING ` + strings.Join(ideaColumns, ", ")
	var row ideaRow
	err = r.db.GetContext(ctx, &row, query, id, entry.Score, string(item), parseTime(entry.At))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("record score for %s: %w", id, err)
	}
	return row.toIdea()
}

func (r *PostgresRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM ideas WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check idea %s: %w", id, err)
	}
	return exists, nil
}

// Remove deletes the idea or returns ErrNotFound.
func (r *PostgresRepository) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ideas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete idea %s: %w", id, err)
	}
	return expectOneRow(res, id)
}

// List builds a parameterised query from filter.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]models.Idea, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if len(filter.Statuses) > 0 {
		add("status = ANY($%d)", pq.Array(filter.Statuses))
	}
	if filter.Visibility != "" {
		add("visibility = $%d", filter.Visibility)
	}
	if filter.EntrepreneurID != "" {
		add("entrepreneur_id = $%d", filter.EntrepreneurID)
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.Stage != "" {
		add("stage = $%d", filter.Stage)
	}
	if filter.MinScore > 0 {
		add("ai_score >= $%d", filter.MinScore)
	}
	if filter.FeaturedOnly {
		conds = append(conds, "featured = TRUE")
	}
	if filter.ExcludeID != "" {
		add("id <> $%d", filter.ExcludeID)
	}
	if filter.Search != "" {
		add("(title ILIKE $%[1]d OR tagline ILIKE $%[1]d OR problem_statement ILIKE $%[1]d)",
			"%"+escapeLike(filter.Search)+"%")
	}

	query := `SELECT ` + strings.Join(ideaColumns, ", ") + ` FROM ideas`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY ` + orderBy(filter.Sort)
	args = append(args, filter.EffectiveLimit())
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	var rows []ideaRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}

	ideas := make([]models.Idea, 0, len(rows))
	for _, row := range rows {
		idea, err := row.toIdea()
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, *idea)
	}
	return ideas, nil
}

func orderBy(sort string) string {
	switch sort {
	case SortRecent:
		return "created_at DESC"
	case SortViews:
		return "views DESC, created_at DESC"
	case SortInterests:
		return "jsonb_array_length(interests) DESC, created_at DESC"
	default:
		return "ai_score DESC NULLS LAST, created_at DESC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func toRow(idea *models.Idea) (*ideaRow, error) {
	author, err := json.Marshal(idea.Entrepreneur)
	if err != nil {
		return nil, fmt.Errorf("encode entrepreneur: %w", err)
	}
	history, err := json.Marshal(nonNil(idea.ScoreHistory))
	if err != nil {
		return nil, fmt.Errorf("encode score history: %w", err)
	}
	interests, err := json.Marshal(nonNil(idea.Interests))
	if err != nil {
		return nil, fmt.Errorf("encode interests: %w", err)
	}

	row := &ideaRow{
		ID:                 idea.ID,
		EntrepreneurID:     idea.Entrepreneur.ID,
		Entrepreneur:       types.JSONText(author),
		Title:              idea.Title,
		Tagline:            idea.Tagline,
		Description:        idea.Description,
		Category:           idea.Category,
		Stage:              idea.Stage,
		CurrentProgress:    idea.CurrentProgress,
		ProblemStatement:   idea.ProblemStatement,
		ProposedSolution:   idea.ProposedSolution,
		Uniqueness:         idea.Uniqueness,
		TargetAudience:     idea.TargetAudience,
		MarketSize:         idea.MarketSize,
		Competitors:        idea.Competitors,
		CustomerValidation: idea.CustomerValidation,
		BusinessModel:      idea.BusinessModel,
		DemoURL:            idea.DemoURL,
		TeamBackground:     idea.TeamBackground,
		PitchDeckURL:       idea.PitchDeckURL,
		Visibility:         idea.Visibility,
		Status:             idea.Status,
		ScoreHistory:       types.JSONText(history),
		Views:              idea.Views,
		Interests:          types.JSONText(interests),
		Featured:           idea.Featured,
		CreatedAt:          parseTime(idea.CreatedAt),
		UpdatedAt:          parseTime(idea.UpdatedAt),
	}
	if idea.AIScore != nil {
		row.AIScore = sql.NullInt64{Int64: int64(*idea.AIScore), Valid: true}
	}
	return row, nil
}

func (row *ideaRow) toIdea() (*models.Idea, error) {
	idea := &models.Idea{
		ID:                 row.ID,
		Title:              row.Title,
		Tagline:            row.Tagline,
		Description:        row.Description,
		Category:           row.Category,
		Stage:              row.Stage,
		CurrentProgress:    row.CurrentProgress,
		ProblemStatement:   row.ProblemStatement,
		ProposedSolution:   row.ProposedSolution,
		Uniqueness:         row.Uniqueness,
		TargetAudience:     row.TargetAudience,
		MarketSize:         row.MarketSize,
		Competitors:        row.Competitors,
		CustomerValidation: row.CustomerValidation,
		BusinessModel:      row.BusinessModel,
		DemoURL:            row.DemoURL,
		TeamBackground:     row.TeamBackground,
		PitchDeckURL:       row.PitchDeckURL,
		Visibility:         row.Visibility,
		Status:             row.Status,
		Views:              row.Views,
		Featured:           row.Featured,
		CreatedAt:          formatTime(row.CreatedAt),
		UpdatedAt:          formatTime(row.UpdatedAt),
	}
	if row.AIScore.Valid {
		score := int(row.AIScore.Int64)
		idea.AIScore = &score
	}
	if len(row.Entrepreneur) > 0 {
		if err := row.Entrepreneur.Unmarshal(&idea.Entrepreneur); err != nil {
			return nil, fmt.Errorf("decode entrepreneur of %s: %w", row.ID, err)
		}
	}
	if idea.Entrepreneur.IsZero() && row.EntrepreneurID != "" {
		idea.Entrepreneur = models.AuthorRef{Ref: row.EntrepreneurID, ID: row.EntrepreneurID}
	}
	if len(row.ScoreHistory) > 0 {
		if err := row.ScoreHistory.Unmarshal(&idea.ScoreHistory); err != nil {
			return nil, fmt.Errorf("decode score history of %s: %w", row.ID, err)
		}
	}
	if len(row.Interests) > 0 {
		if err := row.Interests.Unmarshal(&idea.Interests); err != nil {
			return nil, fmt.Errorf("decode interests of %s: %w", row.ID, err)
		}
	}
	return idea, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
