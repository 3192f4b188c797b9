//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/domain/shared"
	"github.com/signage/backend/internal/infrastructure/config"
	"github.com/signage/backend/internal/infrastructure/migration"
	"github.com/signage/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startPostgres(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("signage"),
		tcpostgres.WithUsername("signage"),
		tcpostgres.WithPassword("signage"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Host:         host,
		Port:         port.Int(),
		User:         "signage",
		Password:     "signage",
		DBName:       "signage",
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	migrationDB, err := sql.Open("postgres", cfg.DSN())
	require.NoError(t, err)
	m, err := migration.NewFromFS(migrationDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	db, err := NewDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPostgres_Repositories(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	entities := NewGormEntityRepository(db.DB)
	templates := NewGormTemplateRepository(db.DB)
	external := NewGormExternalCatalog(db.DB)

	tpl := &catalog.AttributeTemplate{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Name:     "Menu item",
		Fields:   []catalog.TemplateField{{Name: "calories", Kind: catalog.KindNumber, Default: catalog.Text("120")}},
	}
	require.NoError(t, templates.Save(ctx, tpl))

	record := newTestRecord(integration.EntityTypeProduct, "A", "12.00")
	seedRecord(t, db.DB, record)

	entity := newTestProduct(t, tpl.TenantID, "Flat White")
	entity.AttributeTemplateID = &tpl.ID
	require.NoError(t, entity.Link("A", record.SourceID, integration.EntityTypeProduct, time.Now()))
	require.NoError(t, entities.Save(ctx, entity))

	t.Run("entity round trip", func(t *testing.T) {
		found, err := entities.FindByID(ctx, entity.ID)
		require.NoError(t, err)
		assert.True(t, found.IsLinked())
		require.NotNil(t, found.AttributeTemplateID)
		assert.Equal(t, tpl.ID, *found.AttributeTemplateID)
	})

	t.Run("optimistic lock", func(t *testing.T) {
		found, err := entities.FindByID(ctx, entity.ID)
		require.NoError(t, err)
		found.Touch(time.Now())
		require.NoError(t, entities.Save(ctx, found))

		stale := *found
		assert.ErrorIs(t, entities.Save(ctx, &stale), shared.ErrConcurrencyConflict)
	})

	t.Run("external record with jsonb data", func(t *testing.T) {
		found, err := external.FindRecord(ctx, record.Key())
		require.NoError(t, err)
		assert.True(t, found.Price.Decimal.Equal(decimal.RequireFromString("12")))
		assert.Equal(t, "12.00", found.Data["price"])
	})

	t.Run("template default", func(t *testing.T) {
		value, ok, err := templates.FindDefault(ctx, tpl.ID, "calories")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, catalog.KindNumber, value.Kind())
	})
}
