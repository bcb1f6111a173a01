package fixture

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Driver Postgres
)

// DocumentQuerier executa uma query que devolve o documento na primeira coluna.
type DocumentQuerier interface {
	QueryDocument(ctx context.Context, dsn, query string) ([]byte, error)
}

// PostgresQuerier abre uma conexão por leitura, no mesmo espírito do arquivo local
// relido a cada request.
type PostgresQuerier struct{}

func (PostgresQuerier) QueryDocument(ctx context.Context, dsn, query string) ([]byte, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir conexão SQL: %w", err)
	}
	defer db.Close()

	ctxDb, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var content []byte
	if err := db.QueryRowContext(ctxDb, query).Scan(&content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: query sem resultado", ErrNotFound)
		}
		return nil, fmt.Errorf("erro na query SQL: %w", err)
	}
	return content, nil
}
