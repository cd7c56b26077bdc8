package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"

	"github.com/niksmo/menu-admin/config"
)

const (
	storagePathFlag   = "storage-path"
	migrationPathFlag = "migrations-path"
	configFlag        = "config"
	downFlag          = "down"

	pgxScheme = "pgx5://"
)

type flags struct {
	storagePath    string
	migrationsPath string
	configPath     string
	down           bool
}

func main() {
	f := getFlagsValues()
	storageURL := resolveStorage(f)
	validateFlags(storageURL, f.migrationsPath)
	makeMigrations(storageURL, f.migrationsPath, f.down)
}

type MigrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func NewMigrationLogger() *MigrationLogger {
	return &MigrationLogger{
		logger:  slog.Default(),
		verbose: true,
	}
}

func (ml *MigrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(fmt.Sprintf(format, v...))
}

func (ml *MigrationLogger) Verbose() bool {
	return ml.verbose
}

func getFlagsValues() flags {
	var f flags
	pflag.StringVarP(&f.storagePath, storagePathFlag, "s", "",
		"database address without scheme, e.g. user:pass@host:5432/menu")
	pflag.StringVarP(&f.migrationsPath, migrationPathFlag, "m", "", "")
	pflag.StringVarP(&f.configPath, configFlag, "c", "",
		"take sql_db from the config file when --storage-path is not set")
	pflag.BoolVar(&f.down, downFlag, false, "roll back every migration")
	pflag.Parse()
	return f
}

// resolveStorage builds the pgx5 database URL from the flag or from the
// sql_db config value.
func resolveStorage(f flags) string {
	if f.storagePath != "" {
		return pgxScheme + f.storagePath
	}
	if f.configPath == "" {
		return ""
	}

	cfg, err := config.LoadFile(f.configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		fallDown()
	}
	dsn := cfg.SQLDB
	if dsn == "" {
		return ""
	}
	if i := strings.Index(dsn, "://"); i != -1 {
		dsn = dsn[i+len("://"):]
	}
	return pgxScheme + dsn
}

func validateFlags(storageURL, migrationsPath string) {
	var errs []error

	if storageURL == "" {
		errs = append(errs, fmt.Errorf(
			"--%s or --%s flag: required", storagePathFlag, configFlag,
		))
	}

	if migrationsPath == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", migrationPathFlag))
	}

	if len(errs) != 0 {
		slog.Error("too few args", "err", errors.Join(errs...))
		fallDown()
	}
}

func makeMigrations(storageURL, migrationsPath string, down bool) {
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), storageURL)
	if err != nil {
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}
	defer m.Close()

	m.Log = NewMigrationLogger()

	apply := m.Up
	if down {
		apply = m.Down
	}

	if err := apply(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return
		}
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}
	m.Log.Printf("migration applied\n")
}

func fallDown() {
	os.Exit(2)
}
