package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bimakw/portfolio-tracker/internal/config"
	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/testutil"
)

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StorageConfig{Driver: DriverMemory}, config.DatabaseConfig{}, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, DriverMemory, s.Driver)
	assert.NoError(t, s.HealthCheck(ctx))

	h := testutil.CreateTestHolding()
	require.NoError(t, s.Holdings.Create(ctx, &h))

	owners, err := s.Holdings.ListOwners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testutil.AliceID}, owners)

	got, err := s.Holdings.GetByID(ctx, testutil.AliceID, entities.KindCrypto, h.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "BTC", got.Symbol)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Driver: "sqlite"}, config.DatabaseConfig{}, zap.NewNop())
	assert.EqualError(t, err, `unknown storage driver "sqlite"`)
}
