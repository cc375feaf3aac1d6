// internal/store/postgres/postgres.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mercadofacil/backend-go/internal/store"
)

// Store keeps the snapshot in two Postgres tables mirroring the spreadsheet
// columns. It honors the same whole-collection overwrite contract as the
// sheet backend: Save truncates and reinserts both tables in one
// transaction, so a purchase never lands without its stock update.
type Store struct {
	db *DB
}

func New(db *DB) *Store {
	return &Store{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS produtos (
	id             BIGINT PRIMARY KEY,
	produto        TEXT NOT NULL,
	marca          TEXT NOT NULL DEFAULT '',
	preco          NUMERIC(12,2) NOT NULL DEFAULT 0,
	estoque_atual  INT NOT NULL DEFAULT 0,
	estoque_minimo INT NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS historico (
	data           TIMESTAMP NOT NULL,
	produto_id     BIGINT NOT NULL,
	tipo           TEXT NOT NULL CHECK (tipo IN ('AUDIT', 'PURCHASE')),
	qtd            INT NOT NULL,
	preco_na_epoca NUMERIC(12,2) NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_historico_produto ON historico (produto_id, data);
`

// EnsureSchema creates the tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (store.Snapshot, error) {
	var snap store.Snapshot

	err := s.db.SelectContext(ctx, &snap.Products,
		`SELECT id, produto, marca, preco, estoque_atual, estoque_minimo
		 FROM produtos ORDER BY id`)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("%w: load produtos: %v", store.ErrConnection, err)
	}

	err = s.db.SelectContext(ctx, &snap.History,
		`SELECT data, produto_id, tipo, qtd, preco_na_epoca
		 FROM historico ORDER BY data, produto_id`)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("%w: load historico: %v", store.ErrConnection, err)
	}

	return snap, nil
}

func (s *Store) Save(ctx context.Context, snap store.Snapshot) error {
	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `TRUNCATE produtos, historico`); err != nil {
			return fmt.Errorf("postgres: truncate: %w", err)
		}

		for _, p := range snap.Products {
			_, err := tx.NamedExecContext(ctx,
				`INSERT INTO produtos (id, produto, marca, preco, estoque_atual, estoque_minimo)
				 VALUES (:id, :produto, :marca, :preco, :estoque_atual, :estoque_minimo)`, p)
			if err != nil {
				return fmt.Errorf("postgres: insert produto %d: %w", p.ID, err)
			}
		}

		for _, ev := range snap.History {
			_, err := tx.NamedExecContext(ctx,
				`INSERT INTO historico (data, produto_id, tipo, qtd, preco_na_epoca)
				 VALUES (:data, :produto_id, :tipo, :qtd, :preco_na_epoca)`, ev)
			if err != nil {
				return fmt.Errorf("postgres: insert historico row for product %d: %w", ev.ProductID, err)
			}
		}

		return nil
	})
}
