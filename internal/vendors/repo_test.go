package vendors

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vmshq/vms-backend/pkg/db/models"
)

func setupVendorsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS vendors (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func TestListActiveVendorsOnly(t *testing.T) {
	db := setupVendorsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.Vendor{ID: uuid.New(), Name: "Northwind", IsActive: true})
	require.NoError(t, err)
	retired := &models.Vendor{ID: uuid.New(), Name: "Retired Supply", IsActive: false}
	_, err = repo.Create(ctx, retired)
	require.NoError(t, err)

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Northwind", active[0].Name)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSetActiveTogglesVendor(t *testing.T) {
	db := setupVendorsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vendor := &models.Vendor{ID: uuid.New(), Name: "Northwind", IsActive: true}
	_, err := repo.Create(ctx, vendor)
	require.NoError(t, err)

	require.NoError(t, repo.SetActive(ctx, vendor.ID, false))

	found, err := repo.FindByID(ctx, vendor.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}
