// Package repository implements the short link storage contract on
// PostgreSQL via database/sql and the pgx stdlib driver.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/mbocharov/go-shortlink/internal/apperrors"
	"github.com/mbocharov/go-shortlink/internal/models"
)

// linkColumns is the scan order used by every SELECT and RETURNING clause.
const linkColumns = "id, user_id, slug, original_url, description, status, clicks, max_clicks, expires_at, created_at, updated_at"

// InitDB opens the database, verifies the connection and bootstraps the
// schema. The slug unique index is partial: tombstoned rows release their
// slug for reuse while keeping the row itself.
func InitDB(dsn string, logger *zap.Logger) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	createTable := `
		CREATE TABLE IF NOT EXISTS short_links (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		slug TEXT NOT NULL,
		original_url TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		clicks BIGINT NOT NULL DEFAULT 0,
		max_clicks BIGINT,
		expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		deleted_at TIMESTAMPTZ
	);
	CREATE UNIQUE INDEX IF NOT EXISTS short_links_slug_live_idx
		ON short_links (slug) WHERE deleted_at IS NULL;
	CREATE INDEX IF NOT EXISTS short_links_user_idx
		ON short_links (user_id) WHERE deleted_at IS NULL;`

	if _, err := db.Exec(createTable); err != nil {
		logger.Fatal("cannot bootstrap schema", zap.Error(err))
	}

	return db
}

// LinkRepository is the PostgreSQL implementation of service.Storage.
type LinkRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// CreateLinkRepository wraps an open database handle.
func CreateLinkRepository(db *sql.DB, logger *zap.Logger) *LinkRepository {
	return &LinkRepository{
		db:     db,
		logger: logger,
	}
}

// scanLink reads one row in linkColumns order.
func scanLink(row interface{ Scan(...any) error }) (*models.ShortLink, error) {
	var (
		link      models.ShortLink
		maxClicks sql.NullInt64
		expiresAt sql.NullTime
	)

	err := row.Scan(&link.ID, &link.UserID, &link.Slug, &link.OriginalURL,
		&link.Description, &link.Status, &link.Clicks, &maxClicks, &expiresAt,
		&link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if maxClicks.Valid {
		link.MaxClicks = &maxClicks.Int64
	}
	if expiresAt.Valid {
		link.ExpiresAt = &expiresAt.Time
	}

	return &link, nil
}

// isUniqueViolation reports whether err is the Postgres unique-constraint
// error, which here can only mean a slug collision.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (r *LinkRepository) Create(ctx context.Context, link models.ShortLink) (*models.ShortLink, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO short_links (id, user_id, slug, original_url, description, status, clicks, max_clicks, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+linkColumns+`;`,
		link.ID, link.UserID, link.Slug, link.OriginalURL, link.Description,
		link.Status, link.Clicks, link.MaxClicks, link.ExpiresAt,
		link.CreatedAt, link.UpdatedAt,
	)

	created, err := scanLink(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.SlugExists(link.Slug)
		}
		r.logger.Error("insert failed", zap.Error(err))
		return nil, err
	}

	return created, nil
}

func (r *LinkRepository) FindByID(ctx context.Context, id string) (*models.ShortLink, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+linkColumns+` FROM short_links
		WHERE id = $1 AND deleted_at IS NULL;`, id)

	link, err := scanLink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return link, err
}

func (r *LinkRepository) FindByActiveSlug(ctx context.Context, slug string) (*models.ShortLink, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+linkColumns+` FROM short_links
		WHERE slug = $1 AND status = 'active' AND deleted_at IS NULL;`, slug)

	link, err := scanLink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return link, err
}

// Update applies the present patch fields. The statement always touches
// updated_at, so an empty patch still bumps the timestamp.
func (r *LinkRepository) Update(ctx context.Context, id string, patch models.LinkPatch) (*models.ShortLink, error) {
	sets := []string{"updated_at = $1"}
	args := []any{time.Now()}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Slug.Present && !patch.Slug.Null {
		add("slug", patch.Slug.Value)
	}
	if patch.OriginalURL.Present && !patch.OriginalURL.Null {
		add("original_url", patch.OriginalURL.Value)
	}
	if patch.Description.Present {
		if patch.Description.Null {
			add("description", "")
		} else {
			add("description", patch.Description.Value)
		}
	}
	if patch.ExpiresAt.Present {
		if patch.ExpiresAt.Null {
			add("expires_at", nil)
		} else {
			add("expires_at", patch.ExpiresAt.Value)
		}
	}
	if patch.MaxClicks.Present {
		if patch.MaxClicks.Null {
			add("max_clicks", nil)
		} else {
			add("max_clicks", patch.MaxClicks.Value)
		}
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE short_links SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING %s;`, strings.Join(sets, ", "), len(args), linkColumns)

	link, err := scanLink(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil && isUniqueViolation(err) {
		return nil, apperrors.SlugExists(patch.Slug.Value)
	}
	return link, err
}

func (r *LinkRepository) ChangeStatus(ctx context.Context, id string, status models.StoredStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE short_links SET status = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL;`, status, id)
	return err
}

func (r *LinkRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM short_links WHERE slug = $1 AND deleted_at IS NULL
		);`, slug).Scan(&exists)
	return exists, err
}

// SoftDelete tombstones a row and forces the stored flag to disabled.
func (r *LinkRepository) SoftDelete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE short_links SET deleted_at = now(), status = 'disabled', updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL;`, id)
	return err
}

func (r *LinkRepository) SoftDeleteBatch(ctx context.Context, ids []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `
			UPDATE short_links SET deleted_at = now(), status = 'disabled', updated_at = now()
			WHERE id = $1 AND deleted_at IS NULL;`, id); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("rollback failed", zap.Error(rbErr))
			}
			return err
		}
	}

	return tx.Commit()
}

func (r *LinkRepository) ListByUser(ctx context.Context, p models.RepoListParams) ([]models.ShortLink, error) {
	conditions := []string{"user_id = $1", "deleted_at IS NULL"}
	args := []any{p.UserID}

	if p.Status != "" {
		args = append(args, p.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if p.Search != "" {
		args = append(args, "%"+p.Search+"%")
		conditions = append(conditions, fmt.Sprintf("slug ILIKE $%d", len(args)))
	}

	args = append(args, p.Limit, p.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM short_links
		WHERE %s
		ORDER BY created_at DESC, id ASC
		LIMIT $%d OFFSET $%d;`,
		linkColumns, strings.Join(conditions, " AND "), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]models.ShortLink, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}

	return links, rows.Err()
}

// IncrementClicks is the single conditional write the click contract relies
// on: the active+quota check and the increment happen in one statement, so
// concurrent redirects cannot push clicks past max_clicks.
func (r *LinkRepository) IncrementClicks(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE short_links SET clicks = clicks + 1, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL AND status = 'active'
		AND (max_clicks IS NULL OR clicks < max_clicks);`, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *LinkRepository) CountByUser(ctx context.Context, userID, search string, status models.StoredStatus) (int, error) {
	conditions := []string{"user_id = $1", "deleted_at IS NULL"}
	args := []any{userID}

	if status != "" {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		conditions = append(conditions, fmt.Sprintf("slug ILIKE $%d", len(args)))
	}

	var count int
	query := fmt.Sprintf("SELECT count(*) FROM short_links WHERE %s;", strings.Join(conditions, " AND "))
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *LinkRepository) SumClicks(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(clicks), 0) FROM short_links
		WHERE user_id = $1 AND deleted_at IS NULL;`, userID).Scan(&sum)
	return sum, err
}

// GetClicksGroupedByDay groups click totals by link creation date. There is
// no per-click event log, so days on which no link was created produce no
// row.
func (r *LinkRepository) GetClicksGroupedByDay(ctx context.Context, userID string, days int) ([]models.ClicksPoint, error) {
	start := time.Now().AddDate(0, 0, -(days - 1))
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	rows, err := r.db.QueryContext(ctx, `
		SELECT to_char(date(created_at), 'YYYY-MM-DD'), COALESCE(SUM(clicks), 0)
		FROM short_links
		WHERE user_id = $1 AND deleted_at IS NULL AND created_at >= $2
		GROUP BY date(created_at)
		ORDER BY date(created_at);`, userID, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]models.ClicksPoint, 0)
	for rows.Next() {
		var p models.ClicksPoint
		if err := rows.Scan(&p.Date, &p.Clicks); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// CountInactiveByUser counts links that are unusable without being deleted:
// stored-disabled, past their expiry date, or at their click quota.
func (r *LinkRepository) CountInactiveByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*) FROM short_links
		WHERE user_id = $1 AND deleted_at IS NULL
		AND (status = 'disabled'
			OR (expires_at IS NOT NULL AND expires_at < now())
			OR (max_clicks IS NOT NULL AND clicks >= max_clicks));`, userID).Scan(&count)
	return count, err
}

func (r *LinkRepository) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
