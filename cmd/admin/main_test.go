package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"curriculo/internal/auth"
	"curriculo/internal/config"
	"curriculo/internal/database"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCreateAndResetPassword(t *testing.T) {
	db := openDB(t)

	require.NoError(t, createUser(db, "ana@example.com", "", "hash-1"))
	var u database.User
	require.NoError(t, db.Where("email = ?", "ana@example.com").First(&u).Error)
	assert.Equal(t, "ana", u.Name)

	assert.ErrorContains(t, createUser(db, "ana@example.com", "Ana", "hash-2"), "already exists")

	hashed, err := auth.HashPassword("nova-senha")
	require.NoError(t, err)
	require.NoError(t, resetPassword(db, "ana@example.com", hashed))
	require.NoError(t, db.First(&u, u.ID).Error)
	assert.True(t, auth.CheckPasswordHash("nova-senha", u.PasswordHash))

	assert.ErrorContains(t, resetPassword(db, "ninguem@example.com", hashed), "not found")
}

func TestOverrideDatabase(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: 5432, Name: "curriculo"}
	overrideDatabase(&cfg, " ", 0, "")
	assert.Equal(t, config.DatabaseConfig{Host: "db", Port: 5432, Name: "curriculo"}, cfg)

	overrideDatabase(&cfg, "localhost", 6543, "cv")
	assert.Equal(t, config.DatabaseConfig{Host: "localhost", Port: 6543, Name: "cv"}, cfg)

	pw, err := generateRandomPassword(18)
	require.NoError(t, err)
	assert.Len(t, pw, 24)
}
