package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/ports"
)

const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var articleColumns = []string{
	"url", "title", "body_text", "summary", "language", "authors",
	"published_at", "meta_description", "top_image", "source_domain",
	"tags", "word_count", "status", "failure_reason", "retry_count",
	"created_at", "updated_at",
}

// PostgresRepository persists article records in Postgres. The Update
// method is the compare-and-set primitive behind lifecycle claims.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.ArticleRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new record; a URL collision maps to ErrDuplicate.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Article) error {
	query, args, err := psql.Insert("articles").
		Columns(articleColumns...).
		Values(a.URL, a.Title, a.BodyText, a.Summary, a.Language, pq.StringArray(a.Authors),
			nullableTime(a.PublishedAt), a.MetaDescription, a.TopImage, a.SourceDomain,
			a.Tags, a.WordCount, a.Status, a.FailureReason, a.RetryCount,
			a.CreatedAt, a.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// GetByURL loads a record by its URL.
func (r *PostgresRepository) GetByURL(ctx context.Context, rawURL string) (*domain.Article, error) {
	query, args, err := psql.Select(articleColumns...).
		From("articles").
		Where(sq.Eq{"url": rawURL}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	return article, nil
}

// Update writes the record only if its stored status still equals
// expected. A miss against an existing row is ErrConflict: the caller lost
// the claim to a concurrent processor.
func (r *PostgresRepository) Update(ctx context.Context, a *domain.Article, expected domain.Status) error {
	query, args, err := psql.Update("articles").
		Set("title", a.Title).
		Set("body_text", a.BodyText).
		Set("summary", a.Summary).
		Set("language", a.Language).
		Set("authors", pq.StringArray(a.Authors)).
		Set("published_at", nullableTime(a.PublishedAt)).
		Set("meta_description", a.MetaDescription).
		Set("top_image", a.TopImage).
		Set("source_domain", a.SourceDomain).
		Set("tags", a.Tags).
		Set("word_count", a.WordCount).
		Set("status", a.Status).
		Set("failure_reason", a.FailureReason).
		Set("retry_count", a.RetryCount).
		Set("updated_at", a.UpdatedAt).
		Where(sq.Eq{"url": a.URL, "status": expected}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	if _, err := r.GetByURL(ctx, a.URL); err != nil {
		return err
	}
	return domain.ErrConflict
}

// Query returns records matching the filter, newest first by default.
func (r *PostgresRepository) Query(ctx context.Context, filter domain.Filter) ([]domain.Article, error) {
	builder := psql.Select(articleColumns...).From("articles")

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Language != "" {
		builder = builder.Where(sq.Eq{"language": filter.Language})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"body_text": pattern},
		})
	}
	if filter.RetryCountBelow > 0 {
		builder = builder.Where(sq.Lt{"retry_count": filter.RetryCountBelow})
	}
	if filter.RetryCountAtLeast > 0 {
		builder = builder.Where(sq.GtOrEq{"retry_count": filter.RetryCountAtLeast})
	}
	if !filter.UpdatedBefore.IsZero() {
		builder = builder.Where(sq.Lt{"updated_at": filter.UpdatedBefore})
	}

	orderBy := filter.OrderBy
	if !domain.OrderColumns[orderBy] {
		orderBy = "created_at"
	}
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}
	builder = builder.OrderBy(orderBy + " " + direction)

	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, *article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

// Delete removes a record by URL.
func (r *PostgresRepository) Delete(ctx context.Context, rawURL string) error {
	query, args, err := psql.Delete("articles").Where(sq.Eq{"url": rawURL}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// Stats aggregates counts by status, language and domain plus the average
// body length.
func (r *PostgresRepository) Stats(ctx context.Context) (domain.Stats, error) {
	stats := domain.Stats{
		ByStatus:   map[domain.Status]int{},
		ByLanguage: map[domain.Language]int{},
		ByDomain:   map[string]int{},
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(word_count), 0) FROM articles`)
	if err := row.Scan(&stats.Total, &stats.AvgWordCount); err != nil {
		return domain.Stats{}, fmt.Errorf("totals: %w", err)
	}

	if err := r.groupCount(ctx, "status", func(key string, count int) {
		stats.ByStatus[domain.Status(key)] = count
	}); err != nil {
		return domain.Stats{}, err
	}
	if err := r.groupCount(ctx, "language", func(key string, count int) {
		stats.ByLanguage[domain.Language(key)] = count
	}); err != nil {
		return domain.Stats{}, err
	}
	if err := r.groupCount(ctx, "source_domain", func(key string, count int) {
		stats.ByDomain[key] = count
	}); err != nil {
		return domain.Stats{}, err
	}

	return stats, nil
}

func (r *PostgresRepository) groupCount(ctx context.Context, column string, collect func(string, int)) error {
	query, args, err := psql.Select(column, "COUNT(*)").
		From("articles").
		GroupBy(column).
		ToSql()
	if err != nil {
		return fmt.Errorf("build group by %s: %w", column, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("group by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scan group row: %w", err)
		}
		collect(key, count)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*domain.Article, error) {
	var (
		a           domain.Article
		authors     pq.StringArray
		publishedAt sql.NullTime
	)
	err := row.Scan(&a.URL, &a.Title, &a.BodyText, &a.Summary, &a.Language, &authors,
		&publishedAt, &a.MetaDescription, &a.TopImage, &a.SourceDomain,
		&a.Tags, &a.WordCount, &a.Status, &a.FailureReason, &a.RetryCount,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.Authors = []string(authors)
	if publishedAt.Valid {
		t := publishedAt.Time
		a.PublishedAt = &t
	}
	return &a, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
