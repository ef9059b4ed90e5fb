package dsn

import (
	"strings"
)

const memoryDatabase = ":memory:"

// SQLiteResolver handles sqlite:///relative.db and sqlite:////absolute.db URLs.
type SQLiteResolver struct{}

// NewSQLiteResolver creates a new SQLite resolver
func NewSQLiteResolver() *SQLiteResolver {
	return &SQLiteResolver{}
}

// Parse extracts the database file path. Following SQLAlchemy, three slashes
// introduce a relative path and four an absolute one.
func (r *SQLiteResolver) Parse(dsn string) (*DSNInfo, error) {
	scheme, driver, ok := splitScheme(dsn)
	if !ok || scheme != "sqlite" {
		return nil, NewParseError(dsn, "missing or invalid scheme", "use sqlite:///path/to/file.db")
	}
	rest := dsn[strings.Index(dsn, "://")+3:]
	if !strings.HasPrefix(rest, "/") {
		return nil, NewParseError(dsn, "host is not allowed in SQLite URLs", "use sqlite:///relative.db or sqlite:////absolute.db")
	}
	path, params, _ := strings.Cut(rest[1:], "?")

	info := &DSNInfo{
		Type:     DBTypeSQLite,
		Driver:   driver,
		Database: path,
		Params:   make(map[string]string),
		Original: dsn,
	}
	for _, p := range strings.Split(params, "&") {
		if k, v, ok := strings.Cut(p, "="); ok {
			info.Params[k] = v
		}
	}
	if info.Database == "" {
		info.Database = memoryDatabase
	}
	return info, nil
}

// Normalize returns a read-only file URI for modernc.org/sqlite, or
// ":memory:" for in-memory databases.
func (r *SQLiteResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	if info.Database == memoryDatabase {
		return memoryDatabase, nil
	}
	return "file:" + info.Database + "?mode=ro", nil
}

// Validate checks if the URL is a valid SQLite URL.
func (r *SQLiteResolver) Validate(dsn string) error {
	_, err := r.Parse(dsn)
	return err
}
