package connpool

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

//go:embed schema/*.sql
var schemaFiles embed.FS

// ErrNoSchemaForDialect is returned by EnsureSchema for dialects without a bundled schema.
var ErrNoSchemaForDialect = errors.New("no schema bundled for dialect")

// SchemaStatements returns the idempotent DDL statements for the given dialect in execution order.
func SchemaStatements(dialect string) ([]string, error) {
	content, err := schemaFiles.ReadFile("schema/" + dialect + ".sql")
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrNoSchemaForDialect, dialect, err)
	}

	statements := make([]string, 0)
	for _, statement := range strings.Split(string(content), ";") {
		if trimmed := strings.TrimSpace(statement); trimmed != "" {
			statements = append(statements, trimmed)
		}
	}

	return statements, nil
}

// EnsureSchema creates the library tables and indexes if they do not exist yet.
// It only bootstraps empty databases, it does not migrate existing ones.
func (p *Pool) EnsureSchema(ctx context.Context) error {
	statements, err := SchemaStatements(p.dialect)
	if err != nil {
		return err
	}

	return p.Acquire(ctx, func(ctx context.Context, conn Conn) error {
		for _, statement := range statements {
			if _, execErr := conn.Exec(ctx, statement); execErr != nil {
				return errors.Join(librarystore.ErrStorage, librarystore.ErrExecutingStatementFailed, execErr)
			}
		}

		return nil
	})
}
