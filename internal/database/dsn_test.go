package database

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSNDefaults(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "bmiwidget", Name: "bmiwidget"})
	require.NoError(t, err)
	require.Equal(t, "postgres://bmiwidget@localhost:5432/bmiwidget?sslmode=disable", dsn)
}

func TestBuildPostgresDSNWithOptions(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "user",
		Name:     "db",
		Host:     "db.example.com",
		Port:     6543,
		Password: "p@ss word",
		Options: map[string]string{
			"sslmode":     "require",
			"search_path": "public",
		},
	})
	require.NoError(t, err)

	parsed, err := pgconn.ParseConfig(dsn)
	require.NoError(t, err)
	require.Equal(t, "db.example.com", parsed.Host)
	require.Equal(t, uint16(6543), parsed.Port)
	require.Equal(t, "user", parsed.User)
	require.Equal(t, "p@ss word", parsed.Password)
	require.Equal(t, "db", parsed.Database)
	require.Equal(t, "public", parsed.RuntimeParams["search_path"])
	require.NotNil(t, parsed.TLSConfig)
}

func TestBuildPostgresDSNValidation(t *testing.T) {
	_, err := buildPostgresDSN(Config{})
	require.Error(t, err)

	_, err = buildPostgresDSN(Config{User: "u", Name: "db", Options: map[string]string{"sslmode": "sometimes"}})
	require.ErrorContains(t, err, "postgres configuration")

	dsn, err := buildPostgresDSN(Config{DSN: "host=override"})
	require.NoError(t, err)
	require.Equal(t, "host=override", dsn)
}

func TestBuildMySQLDSNDefaults(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "bmiwidget", Name: "bmiwidget"})
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	require.Equal(t, "bmiwidget", parsed.User)
	require.Empty(t, parsed.Passwd)
	require.Equal(t, "127.0.0.1:3306", parsed.Addr)
	require.Equal(t, "bmiwidget", parsed.DBName)
	require.True(t, parsed.ParseTime)
	require.Equal(t, time.Local, parsed.Loc)
	require.Contains(t, dsn, "charset=utf8mb4")
}

func TestBuildMySQLDSNWithOptions(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "user",
		Password: "secret",
		Name:     "db",
		Host:     "db.example.com",
		Port:     3307,
		Options: map[string]string{
			"loc":     "UTC",
			"timeout": "5s",
		},
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "user:secret@tcp(db.example.com:3307)/db?")

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	require.Equal(t, time.UTC, parsed.Loc)
	require.Equal(t, 5*time.Second, parsed.Timeout)
}

func TestBuildMySQLDSNValidation(t *testing.T) {
	_, err := buildMySQLDSN(Config{Host: "localhost"})
	require.Error(t, err)

	_, err = buildMySQLDSN(Config{User: "u", Name: "db", Options: map[string]string{"parseTime": "maybe"}})
	require.ErrorContains(t, err, "parseTime")
}
