package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"PhrasebankScanner/internal/domain"
	"PhrasebankScanner/internal/ports"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const insertBatchSize = 100

const (
	metaSource    = "source"
	metaURL       = "url"
	metaScrapedAt = "scraped_at"
	metaVersion   = "version"
	metaRunID     = "run_id"
	metaSections  = "sections"
)

// Record ids are only unique within a section: "a" + "b_c" and "a_b" + "c"
// both yield a_b_c_n.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS phrases (
		id TEXT NOT NULL,
		section TEXT NOT NULL,
		subsection TEXT NOT NULL,
		position INTEGER NOT NULL,
		text TEXT NOT NULL,
		usage TEXT NOT NULL DEFAULT '',
		academic_score DOUBLE PRECISION NOT NULL,
		frequency TEXT NOT NULL,
		examples TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (section, id)
	)`,
	`CREATE INDEX IF NOT EXISTS phrases_section_idx ON phrases (section, position)`,
	`CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

var phraseColumns = []string{
	"id", "section", "subsection", "text", "usage", "academic_score", "frequency", "examples",
}

// SQLRepository stores the phrase corpus in SQLite or Postgres and serves
// lookups from it.
type SQLRepository struct {
	db     *sql.DB
	driver string
	sb     squirrel.StatementBuilderType
}

var (
	_ ports.CorpusSink   = (*SQLRepository)(nil)
	_ ports.PhraseReader = (*SQLRepository)(nil)
)

// Open connects to the configured database and ensures the schema exists.
func Open(ctx context.Context, driver, dsn string) (*SQLRepository, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if driver == DriverSQLite {
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// A single connection keeps in-memory databases shared and avoids
		// SQLITE_BUSY between the scheduler and the API.
		db.SetMaxOpenConns(1)
	}

	repo := NewSQLRepository(db, driver)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewSQLRepository wraps an open sql.DB; driver selects the placeholder format.
func NewSQLRepository(db *sql.DB, driver string) *SQLRepository {
	ph := squirrel.PlaceholderFormat(squirrel.Question)
	if driver == DriverPostgres {
		ph = squirrel.Dollar
	}
	return &SQLRepository{
		db:     db,
		driver: driver,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(ph),
	}
}

// Migrate creates tables and indexes when missing.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Close releases the database handle.
func (r *SQLRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Name identifies the sink in logs.
func (r *SQLRepository) Name() string {
	return "sql:" + r.driver
}

// Store implements ports.CorpusSink.
func (r *SQLRepository) Store(ctx context.Context, corpus *domain.Corpus) error {
	return r.ReplaceCorpus(ctx, corpus)
}

// ReplaceCorpus swaps the stored dataset for corpus in one transaction.
func (r *SQLRepository) ReplaceCorpus(ctx context.Context, corpus *domain.Corpus) (err error) {
	if corpus == nil {
		return fmt.Errorf("replace corpus: nil corpus")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"phrases", "metadata"} {
		query, args, buildErr := r.sb.Delete(table).ToSql()
		if buildErr != nil {
			return fmt.Errorf("building delete query: %w", buildErr)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err = r.insertPhrases(ctx, tx, corpus); err != nil {
		return err
	}
	if err = r.insertMetadata(ctx, tx, corpus); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit corpus: %w", err)
	}
	return nil
}

func (r *SQLRepository) insertPhrases(ctx context.Context, tx *sql.Tx, corpus *domain.Corpus) error {
	columns := append([]string{"position"}, phraseColumns...)

	var batch []domain.PhraseRecord
	var positions []int
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		insert := r.sb.Insert("phrases").Columns(columns...)
		for i, rec := range batch {
			examples, err := json.Marshal(nonNil(rec.Examples))
			if err != nil {
				return fmt.Errorf("encode examples for %s: %w", rec.ID, err)
			}
			insert = insert.Values(positions[i], rec.ID, rec.Section, rec.Subsection, rec.Text,
				rec.Usage, rec.AcademicScore, string(rec.Frequency), string(examples))
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("building insert query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert phrases: %w", err)
		}
		batch, positions = batch[:0], positions[:0]
		return nil
	}

	for _, section := range corpus.SectionNames() {
		for pos, rec := range corpus.Sections[section].Records() {
			if rec.Section == "" {
				rec.Section = section
			}
			batch = append(batch, rec)
			positions = append(positions, pos)
			if len(batch) == insertBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	return flush()
}

func (r *SQLRepository) insertMetadata(ctx context.Context, tx *sql.Tx, corpus *domain.Corpus) error {
	sections, err := json.Marshal(corpus.SectionNames())
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}

	meta := corpus.Metadata
	insert := r.sb.Insert("metadata").Columns("key", "value").
		Values(metaSource, meta.Source).
		Values(metaURL, meta.URL).
		Values(metaScrapedAt, meta.ScrapedAt.UTC().Format(time.RFC3339Nano)).
		Values(metaVersion, meta.Version).
		Values(metaRunID, meta.RunID).
		Values(metaSections, string(sections))

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert metadata: %w", err)
	}
	return nil
}

// BySection returns a section's phrases in stored order; a non-empty
// subsection narrows the result.
func (r *SQLRepository) BySection(ctx context.Context, section, subsection string) ([]domain.PhraseRecord, error) {
	where := squirrel.Eq{"section": section}
	if subsection != "" {
		where["subsection"] = subsection
	}

	query, args, err := r.sb.Select(phraseColumns...).
		From("phrases").
		Where(where).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	return r.queryPhrases(ctx, query, args)
}

// Search matches query case-insensitively against text and usage, best
// academic score first.
func (r *SQLRepository) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.PhraseRecord, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	sel := r.sb.Select(phraseColumns...).
		From("phrases").
		Where(squirrel.Or{
			squirrel.Expr(`LOWER(text) LIKE ? ESCAPE '\'`, pattern),
			squirrel.Expr(`LOWER(usage) LIKE ? ESCAPE '\'`, pattern),
		}).
		OrderBy("academic_score DESC", "section", "position")

	if opts.Section != "" {
		sel = sel.Where(squirrel.Eq{"section": opts.Section})
	}
	if opts.MinScore > 0 {
		sel = sel.Where(squirrel.GtOrEq{"academic_score": opts.MinScore})
	}
	if opts.Limit > 0 {
		sel = sel.Limit(uint64(opts.Limit))
	}

	sqlQuery, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building search query: %w", err)
	}
	return r.queryPhrases(ctx, sqlQuery, args)
}

// Info describes the stored corpus or returns domain.ErrCorpusNotFound.
func (r *SQLRepository) Info(ctx context.Context) (domain.CorpusInfo, error) {
	query, args, err := r.sb.Select("key", "value").From("metadata").ToSql()
	if err != nil {
		return domain.CorpusInfo{}, fmt.Errorf("building select query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.CorpusInfo{}, fmt.Errorf("query metadata: %w", err)
	}
	defer rows.Close()

	values := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.CorpusInfo{}, fmt.Errorf("scan metadata: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return domain.CorpusInfo{}, fmt.Errorf("rows iteration: %w", err)
	}
	if len(values) == 0 {
		return domain.CorpusInfo{}, domain.ErrCorpusNotFound
	}

	info := domain.CorpusInfo{
		Metadata: domain.Metadata{
			Source:  values[metaSource],
			URL:     values[metaURL],
			Version: values[metaVersion],
			RunID:   values[metaRunID],
		},
		Sections: []string{},
	}
	if ts := values[metaScrapedAt]; ts != "" {
		if info.Metadata.ScrapedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return domain.CorpusInfo{}, fmt.Errorf("parse scraped_at: %w", err)
		}
	}
	if raw := values[metaSections]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &info.Sections); err != nil {
			return domain.CorpusInfo{}, fmt.Errorf("decode sections: %w", err)
		}
	}

	countQuery, countArgs, err := r.sb.Select("COUNT(*)").From("phrases").ToSql()
	if err != nil {
		return domain.CorpusInfo{}, fmt.Errorf("building count query: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&info.TotalPhrases); err != nil {
		return domain.CorpusInfo{}, fmt.Errorf("count phrases: %w", err)
	}

	return info, nil
}

func (r *SQLRepository) queryPhrases(ctx context.Context, query string, args []interface{}) ([]domain.PhraseRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query phrases: %w", err)
	}

	result := make([]domain.PhraseRecord, 0)
	for rows.Next() {
		var (
			rec       domain.PhraseRecord
			frequency string
			examples  string
		)
		if err := rows.Scan(&rec.ID, &rec.Section, &rec.Subsection, &rec.Text, &rec.Usage,
			&rec.AcademicScore, &frequency, &examples); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan phrase: %w", err)
		}
		rec.Frequency = domain.Frequency(frequency)
		if err := json.Unmarshal([]byte(examples), &rec.Examples); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("decode examples for %s: %w", rec.ID, err)
		}
		rec.Examples = nonNil(rec.Examples)
		result = append(result, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// ensureSQLiteDir creates the parent directory of a file-backed sqlite DSN.
func ensureSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.HasPrefix(dsn, "file::memory:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	return nil
}
