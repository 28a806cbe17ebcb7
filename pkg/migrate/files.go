package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var (
	migrationFileRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	unsafeNameRe    = regexp.MustCompile(`[^a-z0-9]+`)
)

type migrationFile struct {
	version string
	name    string
	path    string
}

func parseMigrationFile(dir, filename string) (migrationFile, error) {
	m := migrationFileRe.FindStringSubmatch(filename)
	if m == nil {
		return migrationFile{}, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", filename)
	}
	if _, err := time.Parse(versionLayout, m[1]); err != nil {
		return migrationFile{}, fmt.Errorf("migration %q has an invalid timestamp: %w", filename, err)
	}
	return migrationFile{version: m[1], name: m[2], path: filepath.Join(dir, filename)}, nil
}

// slug lower-cases name and collapses anything outside [a-z0-9] to "_".
func slug(name string) string {
	return strings.Trim(unsafeNameRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_"), "_")
}

// CreateSQLMigration writes an empty goose migration named
// <dir>/<YYYYMMDDHHMMSS>_<slug>.sql and returns its path.
func CreateSQLMigration(dir, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := slug(name)
	if safe == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", time.Now().UTC().Format(versionLayout), safe))
	body := fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- revert %[1]s
-- +goose StatementEnd
`, safe)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(body); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}

// ValidateDir checks every .sql file in dir: well-formed unique versions,
// both goose sections present, and balanced statement blocks.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var files []migrationFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		mf, err := parseMigrationFile(dir, e.Name())
		if err != nil {
			return err
		}
		files = append(files, mf)
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	for i, mf := range files {
		if i > 0 && files[i-1].version == mf.version {
			return fmt.Errorf("duplicate migration version %s (%s, %s)", mf.version, files[i-1].name, mf.name)
		}
		if err := checkSections(mf); err != nil {
			return err
		}
	}
	return nil
}

func checkSections(mf migrationFile) error {
	raw, err := os.ReadFile(mf.path)
	if err != nil {
		return fmt.Errorf("read %q: %w", mf.path, err)
	}
	text := string(raw)

	up := strings.Index(text, "-- +goose Up")
	down := strings.Index(text, "-- +goose Down")
	switch {
	case up < 0:
		return fmt.Errorf("migration %s_%s is missing \"-- +goose Up\"", mf.version, mf.name)
	case down < 0:
		return fmt.Errorf("migration %s_%s is missing \"-- +goose Down\"", mf.version, mf.name)
	case down < up:
		return fmt.Errorf("migration %s_%s declares Down before Up", mf.version, mf.name)
	}

	if begins, ends := strings.Count(text, "-- +goose StatementBegin"), strings.Count(text, "-- +goose StatementEnd"); begins != ends {
		return fmt.Errorf("migration %s_%s has %d StatementBegin and %d StatementEnd markers", mf.version, mf.name, begins, ends)
	}
	return nil
}
