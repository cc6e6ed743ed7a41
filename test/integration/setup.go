package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gearhub/internal/config"
	"gearhub/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	redistc "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Fixed product IDs so tests can reference seeded rows directly.
var (
	ProductBrakePads  = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	ProductOilFilter  = uuid.MustParse("22222222-2222-4222-8222-222222222222")
	ProductSparkPlug  = uuid.MustParse("33333333-3333-4333-8333-333333333333")
	ProductFloorJack  = uuid.MustParse("44444444-4444-4444-8444-444444444444")
	ShippingStandard  = uuid.MustParse("a1f7c3e0-0000-4000-8000-000000000001")
	ShippingOvernight = uuid.MustParse("a1f7c3e0-0000-4000-8000-000000000003")
)

// TestDB represents a migrated PostgreSQL test instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	Config    config.DatabaseConfig
}

// SetupTestDB starts a PostgreSQL container, applies the real schema
// migrations and returns a connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("gearhub_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Database:        "gearhub_test",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()

	if err := database.Migrate(dbConfig, "../../migrations", logger); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		Config:    dbConfig,
	}
}

// SetupTestRedis starts a Redis container and returns a connected client
// for the checkout session store.
func SetupTestRedis(t *testing.T) *goredis.Client {
	t.Helper()

	ctx := context.Background()

	redisContainer, err := redistc.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	connStr, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}

	opts, err := goredis.ParseURL(connStr)
	if err != nil {
		t.Fatalf("failed to parse redis connection string: %v", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("failed to ping redis: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	return client
}

// SeedProducts inserts a small catalogue of car-part products.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	salePrice := decimal.RequireFromString("21.99")

	products := []struct {
		id          uuid.UUID
		name        string
		sku         string
		brand       string
		price       string
		salePrice   *decimal.Decimal
		stock       int
		manageStock bool
	}{
		{ProductBrakePads, "Ceramic Brake Pads", "BRK-4100", "StopTech", "24.99", &salePrice, 10, true},
		{ProductOilFilter, "Oil Filter", "OIL-2210", "Mann", "8.50", nil, 100, true},
		{ProductSparkPlug, "Iridium Spark Plug", "SPK-0042", "NGK", "12.00", nil, 3, true},
		{ProductFloorJack, "Hydraulic Floor Jack", "JCK-9000", "Arcan", "149.00", nil, 0, false},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, name, sku, brand, price, sale_price, stock_quantity, manage_stock, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)`,
			p.id, p.name, p.sku, p.brand, decimal.RequireFromString(p.price), p.salePrice, p.stock, p.manageStock,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.sku, err)
		}
	}
}

// CleanupDB clears all data written by a test, keeping the seeded
// shipping methods from the migrations.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"order_status_history",
		"order_line_items",
		"orders",
		"cart_items",
		"carts",
		"products",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
