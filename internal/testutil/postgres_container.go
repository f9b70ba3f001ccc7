package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/blackcloro/escrow-program/internal/database"
	"github.com/blackcloro/escrow-program/pkg/logger"
)

type PostgresContainer struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	DSN       string
	Config    PostgresConfig
}

type PostgresConfig struct {
	User     string
	Password string
	DBName   string
}

var DefaultPostgresConfig = PostgresConfig{
	User:     "test_user",
	Password: "test_password",
	DBName:   "test_db",
}

func NewPostgresContainer(ctx context.Context, config PostgresConfig) (*PostgresContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     config.User,
			"POSTGRES_PASSWORD": config.Password,
			"POSTGRES_DB":       config.DBName,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container external port: %w", err)
	}

	hostIP, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		config.User, config.Password, hostIP, mappedPort.Port(), config.DBName)

	var pool *pgxpool.Pool
	var poolErr error
	for i := 0; i < 5; i++ {
		pool, poolErr = database.NewPostgresDB(dsn)
		if poolErr == nil {
			break
		}
		logger.Warn("Database not ready, retrying", "attempt", i+1, "error", poolErr)
		time.Sleep(2 * time.Second)
	}
	if poolErr != nil {
		return nil, fmt.Errorf("failed to connect to database after retries: %w", poolErr)
	}

	return &PostgresContainer{
		Container: container,
		Pool:      pool,
		DSN:       dsn,
		Config:    config,
	}, nil
}

// MigrationsSource is the migrate source URL of the repository's migrations directory.
func MigrationsSource() (string, error) {
	_, path, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to get path")
	}
	return "file://" + filepath.Join(filepath.Dir(path), "..", "..", "migrations"), nil
}

func (pc *PostgresContainer) MigrateDB() error {
	source, err := MigrationsSource()
	if err != nil {
		return err
	}
	return database.Migrate(pc.DSN, source)
}

// TruncateAccounts removes every stored account.
func (pc *PostgresContainer) TruncateAccounts(ctx context.Context, t require.TestingT) {
	_, err := pc.Pool.Exec(ctx, "TRUNCATE TABLE accounts")
	require.NoError(t, err)
}

func (pc *PostgresContainer) Terminate(ctx context.Context) error {
	pc.Pool.Close()
	return pc.Container.Terminate(ctx)
}
