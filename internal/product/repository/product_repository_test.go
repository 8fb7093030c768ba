package repository

import (
	"testing"

	"farmlink_service/internal/product/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dry-run session, statements are built but never sent
func dryRunDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  "host=localhost user=test dbname=test sslmode=disable",
		PreferSimpleProtocol: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestProductQuery(t *testing.T) {
	db := dryRunDB(t)

	stmt := db.Where("id = ?", "p1").First(&domain.Product{}).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, `FROM "products"`)
	assert.Contains(t, sql, "id = $1")
	assert.Equal(t, []interface{}{"p1"}, stmt.Vars[:1])
}
