package common

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "insights.db", cfg.Database.DSN)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.MaxConnLifetime)
	assert.Equal(t, ":8080", cfg.Server.GRPCAddr)
	assert.Equal(t, "http://localhost:3000", cfg.Share.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.Share.DefaultTTL)
	assert.Equal(t, 2, cfg.Export.Workers)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_URL", "postgres://u:p@localhost:5432/insights")
	t.Setenv("GRPC_ADDR", ":9090")
	t.Setenv("SHARE_BASE_URL", "https://share.example.com")
	t.Setenv("SHARE_DEFAULT_TTL", "72h")
	t.Setenv("INGEST_WATCH_DIR", "/data/uploads")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@localhost:5432/insights", cfg.Database.DSN)
	assert.Equal(t, ":9090", cfg.Server.GRPCAddr)
	assert.Equal(t, "https://share.example.com", cfg.Share.BaseURL)
	assert.Equal(t, 72*time.Hour, cfg.Share.DefaultTTL)
	assert.Equal(t, "/data/uploads", cfg.Ingest.WatchDir)
}

func TestValidateRejectsMissingBaseURL(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{DSN: "insights.db"},
		Server:   ServerConfig{GRPCAddr: ":8080"},
		Export:   ExportConfig{Workers: 1},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestNewPersistenceErrorKeepsNotFound(t *testing.T) {
	err := NewPersistenceError("get share", ErrNotFound)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrPersistence))

	err = NewPersistenceError("create share", errors.New("connection refused"))
	assert.True(t, errors.Is(err, ErrPersistence))
	assert.Nil(t, NewPersistenceError("noop", nil))
}

func TestValidateAndReturnError(t *testing.T) {
	assert.NoError(t, ValidateAndReturnError(NewValidator().Field("share_id", "0b7c7a52-2f6d-4d4e-9f61-6f3b1b7f0a11", UUID)))

	err := ValidateAndReturnError(NewValidator().Field("share_id", "not-a-uuid", UUID))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, codes.Unavailable, status.Code(ToStatus(fmt.Errorf("%w: ping", ErrDatabase))))
}

func TestValidatorCollectsErrors(t *testing.T) {
	v := NewValidator().
		Field("product_name", "", Required).
		Field("month", "2024-13", Month).
		Field("date", "2024-02-29", Date).
		Field("share_id", "not-a-uuid", UUID)

	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)
	assert.True(t, errors.Is(v.Error(), ErrValidation))
}
