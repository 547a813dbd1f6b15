package main

import (
	"testing"

	"github.com/linemk/fanbase/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestMigrateDSN(t *testing.T) {
	dsn := migrateDSN(config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "fanbase",
		Password: "pw",
		Name:     "fanbase",
		SSLMode:  "disable",
	}, "schema_migrations")
	assert.Equal(t, "postgres://fanbase:pw@localhost:5432/fanbase?sslmode=disable&x-migrations-table=schema_migrations", dsn)
}
