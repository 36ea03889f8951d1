package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/psim/backend/internal/infrastructure/config"
	"github.com/psim/backend/internal/infrastructure/logger"
	"github.com/psim/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

var errUsage = errors.New("invalid arguments")

// command is one migrate subcommand. Commands without a migrator only touch
// the migrations directory.
type command struct {
	usage   string
	summary string
	args    int
	files   func(dir string, args []string, log *zap.Logger) error
	db      func(m *migration.Migrator, args []string, log *zap.Logger) error
}

var commands = map[string]command{
	"up": {usage: "up", summary: "Apply all pending migrations",
		db: func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Up() }},
	"down": {usage: "down", summary: "Roll back every migration",
		db: func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Down() }},
	"step": {usage: "step <n>", summary: "Apply n migrations, negative n rolls back", args: 1,
		db: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("step count %q: %w", args[0], errUsage)
			}
			return m.Steps(n)
		}},
	"goto": {usage: "goto <version>", summary: "Migrate up or down to version", args: 1,
		db: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
			v, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("version %q: %w", args[0], errUsage)
			}
			return m.GoTo(uint(v))
		}},
	"force": {usage: "force <version>", summary: "Record version as applied without running it", args: 1,
		db: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("version %q: %w", args[0], errUsage)
			}
			return m.Force(v)
		}},
	"version": {usage: "version", summary: "Show the applied version",
		db: func(m *migration.Migrator, _ []string, log *zap.Logger) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if v == 0 {
				log.Info("No migrations applied")
				return nil
			}
			log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
			return nil
		}},
	"create": {usage: "create <name> [description]", summary: "Write a new up/down file pair", args: 1,
		files: func(dir string, args []string, log *zap.Logger) error {
			mf, err := migration.CreateMigration(dir, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			log.Info("Migration created",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		}},
	"list": {usage: "list", summary: "List the migration files",
		files: func(dir string, _ []string, log *zap.Logger) error {
			names, err := migration.ListMigrations(dir)
			if err != nil {
				return err
			}
			log.Info("Available migrations", zap.Int("count", len(names)))
			for _, n := range names {
				fmt.Println("  -", n)
			}
			return nil
		}},
}

func main() {
	dir := flag.String("path", "", "migrations directory (default ./migrations)")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      *level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: logger.DefaultTimeFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	err = run(flag.Arg(0), flag.Args()[1:], *dir, log)
	_ = logger.Sync(log)
	if errors.Is(err, errUsage) {
		fmt.Fprintln(os.Stderr, err)
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		log.Error("Migration command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		os.Exit(1)
	}
}

func run(name string, args []string, dir string, log *zap.Logger) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q: %w", name, errUsage)
	}
	if len(args) < cmd.args {
		return fmt.Errorf("usage: migrate %s: %w", cmd.usage, errUsage)
	}

	dir, err := resolveMigrationsPath(dir)
	if err != nil {
		return err
	}
	log.Debug("Migrations directory", zap.String("path", dir))

	if cmd.files != nil {
		return cmd.files(dir, args, log)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database %s: %w", cfg.Database.Host, err)
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return cmd.db(m, args, log)
}

// resolveMigrationsPath returns dir as an absolute path. An empty dir means
// ./migrations, or the migrations/ two levels above the binary.
func resolveMigrationsPath(dir string) (string, error) {
	if dir != "" {
		return filepath.Abs(dir)
	}
	if _, err := os.Stat(defaultMigrationsPath); err == nil {
		return filepath.Abs(defaultMigrationsPath)
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Abs(candidate)
		}
	}
	return filepath.Abs(defaultMigrationsPath)
}

func printUsage() {
	names := []string{"up", "down", "step", "goto", "force", "version", "create", "list"}
	var b strings.Builder
	b.WriteString("Store ledger schema migrations\n\nUsage:\n  migrate [-path dir] [-log-level level] <command>\n\nCommands:\n")
	for _, n := range names {
		c := commands[n]
		fmt.Fprintf(&b, "  %-30s %s\n", c.usage, c.summary)
	}
	b.WriteString("\nThe database is read from config.toml, .env and PSIM_DATABASE_* variables.\n")
	fmt.Fprint(os.Stderr, b.String())
}
