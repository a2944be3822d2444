package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tourbook/tourbook/internal/shared/logger"
)

var migrationNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// Generator writes a new migration in both script formats so the goose and
// golang-migrate strategies stay in step.
type Generator struct {
	scriptsPath string
	logger      logger.Interface
}

// NewGenerator creates a generator rooted at the scripts directory in the
// source tree, e.g. internal/infrastructure/migration/scripts.
func NewGenerator(scriptsPath string, log logger.Interface) *Generator {
	return &Generator{
		scriptsPath: scriptsPath,
		logger:      log.With("component", "migration.generator"),
	}
}

// CreateMigration writes <n>_<name>.sql for goose and the matching
// .up.sql/.down.sql pair for golang-migrate, numbered after the highest
// existing goose version. It returns the created paths.
func (g *Generator) CreateMigration(name string) ([]string, error) {
	if !migrationNamePattern.MatchString(name) {
		return nil, fmt.Errorf("invalid migration name %q: use lower_snake_case", name)
	}

	gooseDir := filepath.Join(g.scriptsPath, "goose")
	migrateDir := filepath.Join(g.scriptsPath, "migrate")
	for _, dir := range []string{gooseDir, migrateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create scripts directory: %w", err)
		}
	}

	next, err := nextVersion(os.DirFS(gooseDir))
	if err != nil {
		return nil, err
	}

	files := map[string]string{
		filepath.Join(gooseDir, fmt.Sprintf("%05d_%s.sql", next, name)): fmt.Sprintf(
			"-- +goose Up\n-- %s\n\n-- +goose Down\n", name),
		filepath.Join(migrateDir, fmt.Sprintf("%06d_%s.up.sql", next, name)):   fmt.Sprintf("-- %s\n", name),
		filepath.Join(migrateDir, fmt.Sprintf("%06d_%s.down.sql", next, name)): fmt.Sprintf("-- rollback %s\n", name),
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := os.WriteFile(path, []byte(files[path]), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	g.logger.Infow("migration files created", "version", next, "files", paths)
	return paths, nil
}

// nextVersion returns one past the highest numeric prefix in dir.
func nextVersion(dir fs.FS) (int, error) {
	entries, err := fs.ReadDir(dir, ".")
	if err != nil {
		return 0, fmt.Errorf("failed to list migrations: %w", err)
	}

	highest := 0
	for _, e := range entries {
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok || e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}
