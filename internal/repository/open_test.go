package repository

import (
	"context"
	"path/filepath"
	"testing"

	"rps_webapp/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSelectsDriver(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "s.db")}
	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &SQLiteStatsRepository{}, s)

	_, err = Open(context.Background(), &config.Config{StoreDriver: "mongo"})
	assert.Error(t, err)

	s, err = Open(context.Background(), &config.Config{StoreDriver: config.DriverSQLite, SQLitePath: ""})
	assert.Error(t, err)
	assert.Nil(t, s)
}
