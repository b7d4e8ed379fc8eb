package dataset

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/config"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/database"
)

func TestListQuery(t *testing.T) {
	repo := NewRepository(nil, "listings", zerolog.Nop())

	sql, args, err := repo.listQuery(Filter{})
	require.NoError(t, err)
	assert.Equal(t, `SELECT area, room_count, province, district, neighborhood, seller_type, price, listed_at FROM "listings" ORDER BY id`, sql)
	assert.Empty(t, args)

	sql, args, err = repo.listQuery(Filter{Province: "İstanbul", District: "Kadıköy", MinArea: 80, MaxArea: 120, Limit: 10})
	require.NoError(t, err)
	assert.Contains(t, sql, "district = $1")
	assert.Contains(t, sql, "province = $2")
	assert.Contains(t, sql, "area >= $3")
	assert.Contains(t, sql, "area <= $4")
	assert.Contains(t, sql, "LIMIT 10")
	assert.Equal(t, []interface{}{"Kadıköy", "İstanbul", 80.0, 120.0}, args)
}

func TestInsertQuery(t *testing.T) {
	repo := NewRepository(nil, "listings", zerolog.Nop())
	area, price := 100.0, 1_000_000.0

	sql, args, err := repo.insertQuery([]contracts.RawListing{
		{Area: &area, RoomCount: "3+1", Province: "A", District: "B", Price: &price},
		{RoomCount: "bad"},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, `INSERT INTO "listings" (area,room_count,province,district,neighborhood,seller_type,price,listed_at)`)
	assert.Contains(t, sql, "($9,$10,$11,$12,$13,$14,$15,$16)")
	assert.Len(t, args, 16)
}

func TestRepository_Live(t *testing.T) {
	// Skip if DATABASE_URL is not set
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	db, err := database.New(cfg)
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := NewRepository(db, "listings_dataset_test", zerolog.Nop())
	defer db.Pool.Exec(context.Background(), `DROP TABLE IF EXISTS listings_dataset_test`)

	area, price := 100.0, 1_000_000.0
	rows := []contracts.RawListing{
		{Area: &area, RoomCount: "3+1", Province: "İstanbul", District: "Kadıköy", Neighborhood: "Moda", SellerType: "owner", Price: &price},
		{Area: nil, RoomCount: "2+1", Province: "Ankara", District: "Çankaya", Price: &price},
	}

	n, err := repo.Import(ctx, rows, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, rows, loaded)

	filtered, err := repo.List(ctx, Filter{Province: "İstanbul"})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)

	// replace=true 이므로 두 번째 임포트 후에도 2건
	_, err = repo.Import(ctx, rows, true)
	require.NoError(t, err)
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
