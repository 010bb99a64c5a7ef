package stores

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopzen/shopzen-backend/pkg/db/models"
)

func setupStoresTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  name_slug TEXT NOT NULL,
  custom_path TEXT,
  email TEXT,
  back_in_stock_enabled INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	return db
}

func TestRepositoryFindByID(t *testing.T) {
	db := setupStoresTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	store := &models.Store{
		ID:                 uuid.New(),
		Name:               "Maple & Main",
		NameSlug:           "maple-and-main",
		BackInStockEnabled: true,
	}
	require.NoError(t, db.Create(store).Error)

	found, err := repo.FindByID(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, store.Name, found.Name)
	assert.True(t, found.BackInStockEnabled)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdate(t *testing.T) {
	db := setupStoresTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	store := &models.Store{
		ID:       uuid.New(),
		Name:     "Maple & Main",
		NameSlug: "maple-and-main",
	}
	require.NoError(t, db.Create(store).Error)

	store.BackInStockEnabled = true
	require.NoError(t, repo.Update(ctx, store))

	found, err := repo.FindByID(ctx, store.ID)
	require.NoError(t, err)
	assert.True(t, found.BackInStockEnabled)

	assert.Error(t, repo.Update(ctx, nil))
}
