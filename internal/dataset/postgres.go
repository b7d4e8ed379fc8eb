package dataset

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/database"
)

// importChunk rows per multi-row INSERT
const importChunk = 500

var listingColumns = []string{
	"area", "room_count", "province", "district", "neighborhood", "seller_type", "price", "listed_at",
}

// Filter narrows a listing query. Zero values mean "no condition".
type Filter struct {
	Province     string
	District     string
	Neighborhood string
	MinArea      float64
	MaxArea      float64
	Limit        uint64
}

// Repository stores listings in PostgreSQL
// ⭐ SSOT: listings 테이블 접근은 여기서만
type Repository struct {
	db    *database.DB
	table string
	sb    sq.StatementBuilderType
	log   zerolog.Logger
}

// NewRepository 새 리포지토리 생성
func NewRepository(db *database.DB, table string, log zerolog.Logger) *Repository {
	return &Repository{
		db:    db,
		table: table,
		sb:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		log:   log.With().Str("component", "dataset.postgres").Logger(),
	}
}

// Name identifies the source in logs and errors.
func (r *Repository) Name() string {
	return "postgres:" + r.table
}

// Load returns every listing in insertion order.
func (r *Repository) Load(ctx context.Context) ([]contracts.RawListing, error) {
	rows, err := r.List(ctx, Filter{})
	if err != nil {
		return nil, &contracts.DataLoadError{Source: r.Name(), Err: err}
	}
	r.log.Info().Int("rows", len(rows)).Msg("dataset loaded")
	return rows, nil
}

// List returns listings matching the filter.
func (r *Repository) List(ctx context.Context, f Filter) ([]contracts.RawListing, error) {
	query, args, err := r.listQuery(f)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var out []contracts.RawListing
	for rows.Next() {
		var l contracts.RawListing
		if err := rows.Scan(&l.Area, &l.RoomCount, &l.Province, &l.District, &l.Neighborhood, &l.SellerType, &l.Price, &l.Date); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return out, nil
}

func (r *Repository) listQuery(f Filter) (string, []interface{}, error) {
	q := r.sb.Select(listingColumns...).From(r.ident()).OrderBy("id")

	eq := sq.Eq{}
	if f.Province != "" {
		eq["province"] = f.Province
	}
	if f.District != "" {
		eq["district"] = f.District
	}
	if f.Neighborhood != "" {
		eq["neighborhood"] = f.Neighborhood
	}
	if len(eq) > 0 {
		q = q.Where(eq)
	}
	if f.MinArea > 0 {
		q = q.Where(sq.GtOrEq{"area": f.MinArea})
	}
	if f.MaxArea > 0 {
		q = q.Where(sq.LtOrEq{"area": f.MaxArea})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return q.ToSql()
}

// Count returns the number of stored listings.
func (r *Repository) Count(ctx context.Context) (int, error) {
	query, args, err := r.sb.Select("COUNT(*)").From(r.ident()).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var n int
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}

// Import writes listings in one transaction. With replace, existing rows are deleted first.
func (r *Repository) Import(ctx context.Context, listings []contracts.RawListing, replace bool) (int, error) {
	if err := r.db.EnsureListingsTable(ctx, r.table); err != nil {
		return 0, err
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	if replace {
		del, args, err := r.sb.Delete(r.ident()).ToSql()
		if err != nil {
			return 0, fmt.Errorf("build delete: %w", err)
		}
		if _, err := tx.Exec(ctx, del, args...); err != nil {
			return 0, fmt.Errorf("clear listings: %w", err)
		}
	}

	batch := &pgx.Batch{}
	for start := 0; start < len(listings); start += importChunk {
		query, args, err := r.insertQuery(listings[start:min(start+importChunk, len(listings))])
		if err != nil {
			return 0, fmt.Errorf("build insert: %w", err)
		}
		batch.Queue(query, args...)
	}

	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return 0, fmt.Errorf("insert chunk %d: %w", i, err)
			}
		}
		if err := br.Close(); err != nil {
			return 0, fmt.Errorf("close batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	r.log.Info().Int("rows", len(listings)).Bool("replace", replace).Msg("listings imported")
	return len(listings), nil
}

func (r *Repository) insertQuery(chunk []contracts.RawListing) (string, []interface{}, error) {
	q := r.sb.Insert(r.ident()).Columns(listingColumns...)
	for _, l := range chunk {
		q = q.Values(l.Area, l.RoomCount, l.Province, l.District, l.Neighborhood, l.SellerType, l.Price, l.Date)
	}
	return q.ToSql()
}

func (r *Repository) ident() string {
	return pgx.Identifier{r.table}.Sanitize()
}
