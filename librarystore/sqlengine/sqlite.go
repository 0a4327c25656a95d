package sqlengine

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// DriverSQLite3Unicode is the database/sql driver name of go-sqlite3 with lower() and upper() replaced
// by Unicode-aware versions. The builtin SQLite functions only fold ASCII letters.
const DriverSQLite3Unicode = "sqlite3_unicode"

func init() {
	sql.Register(DriverSQLite3Unicode, &sqlite3.SQLiteDriver{
		ConnectHook: registerUnicodeCaseFunctions,
	})
	sqlx.BindDriver(DriverSQLite3Unicode, sqlx.QUESTION)
}

func registerUnicodeCaseFunctions(conn *sqlite3.SQLiteConn) error {
	if err := conn.RegisterFunc("lower", strings.ToLower, true); err != nil {
		return err
	}

	return conn.RegisterFunc("upper", strings.ToUpper, true)
}
