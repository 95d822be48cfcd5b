package store

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/huandu/go-sqlbuilder"

	// Registered database/sql drivers.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported driver names, as registered with database/sql.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
)

// Dialect describes how SQL is rendered for one driver.
type Dialect struct {
	Driver    string
	Flavor    sqlbuilder.Flavor
	TextType  string
	FloatType string
}

var dialects = map[string]Dialect{
	DriverSQLite:   {Driver: DriverSQLite, Flavor: sqlbuilder.SQLite, TextType: "TEXT", FloatType: "REAL"},
	DriverPostgres: {Driver: DriverPostgres, Flavor: sqlbuilder.PostgreSQL, TextType: "TEXT", FloatType: "DOUBLE PRECISION"},
	DriverMySQL:    {Driver: DriverMySQL, Flavor: sqlbuilder.MySQL, TextType: "TEXT", FloatType: "DOUBLE"},
}

// DialectFor returns the dialect for a driver name. "postgres" and
// "sqlite3" are accepted as aliases.
func DialectFor(driver string) (Dialect, error) {
	switch d := strings.ToLower(strings.TrimSpace(driver)); d {
	case "postgres", "postgresql":
		return dialects[DriverPostgres], nil
	case "sqlite3":
		return dialects[DriverSQLite], nil
	default:
		if dialect, ok := dialects[d]; ok {
			return dialect, nil
		}
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name can be used unquoted as a table name.
// Unquoted names keep the report queries portable across dialects.
func ValidIdentifier(name string) bool {
	return len(name) <= 63 && identifierRE.MatchString(name)
}
