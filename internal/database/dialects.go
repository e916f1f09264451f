package database

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const sqliteMemoryDSN = "file::memory:?cache=shared&_foreign_keys=1"

func sqliteDialector(cfg Config) (gorm.Dialector, error) {
	if cfg.DSN != "" {
		return sqlite.Open(cfg.DSN), nil
	}

	path := strings.TrimSpace(cfg.Path)
	if path == "" || strings.EqualFold(path, ":memory:") {
		return sqlite.Open(sqliteMemoryDSN), nil
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	return sqlite.Open("file:" + filepath.ToSlash(path) + "?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000"), nil
}

// tuneSQLite pins the pool to one connection: SQLite has a single writer and the
// shared in-memory database disappears once its last connection closes.
func tuneSQLite(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	return db.Exec("PRAGMA foreign_keys = ON").Error
}

func postgresDialector(cfg Config) (gorm.Dialector, error) {
	dsn, err := buildPostgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	return postgres.Open(dsn), nil
}

// buildPostgresDSN renders a postgres:// URL and validates it with pgconn so
// malformed options fail at start-up rather than on first query.
func buildPostgresDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("postgres configuration requires user and database name")
	}

	query := url.Values{}
	for key, value := range cfg.Options {
		query.Set(key, value)
	}
	if query.Get("sslmode") == "" {
		query.Set("sslmode", "disable")
	}

	dsn := (&url.URL{
		Scheme:   "postgres",
		User:     postgresUser(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(withDefault(cfg.Host, "localhost"), strconv.Itoa(withDefaultPort(cfg.Port, 5432))),
		Path:     "/" + cfg.Name,
		RawQuery: query.Encode(),
	}).String()

	if _, err := pgconn.ParseConfig(dsn); err != nil {
		return "", fmt.Errorf("postgres configuration: %w", err)
	}
	return dsn, nil
}

func postgresUser(user, password string) *url.Userinfo {
	if password == "" {
		return url.User(user)
	}
	return url.UserPassword(user, password)
}

func mysqlDialector(cfg Config) (gorm.Dialector, error) {
	dsn, err := buildMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gormmysql.Open(dsn), nil
}

// buildMySQLDSN always enables parseTime; "loc" and "parseTime" in Options map
// onto the driver config, everything else passes through as a parameter.
func buildMySQLDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("mysql configuration requires user and database name")
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(withDefault(cfg.Host, "127.0.0.1"), strconv.Itoa(withDefaultPort(cfg.Port, 3306)))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}

	keys := make([]string, 0, len(cfg.Options))
	for key := range cfg.Options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := cfg.Options[key]
		switch key {
		case "parseTime":
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				return "", fmt.Errorf("mysql configuration: parseTime: %w", err)
			}
			mc.ParseTime = parsed
		case "loc":
			loc, err := time.LoadLocation(value)
			if err != nil {
				return "", fmt.Errorf("mysql configuration: loc: %w", err)
			}
			mc.Loc = loc
		default:
			mc.Params[key] = value
		}
	}

	return mc.FormatDSN(), nil
}

func withDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value == "" {
		return fallback
	}
	return value
}

func withDefaultPort(port, fallback int) int {
	if port <= 0 {
		return fallback
	}
	return port
}
