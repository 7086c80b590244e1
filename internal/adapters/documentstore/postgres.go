package documentstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Amund211/gamenight/internal/reporting"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Postgres stores documents as JSONB rows in the documents table
type Postgres struct {
	db     *sqlx.DB
	schema string

	tracer trace.Tracer
}

func NewPostgres(db *sqlx.DB, schema string) *Postgres {
	tracer := otel.Tracer("gamenight/documentstore/postgres")

	return &Postgres{
		db:     db,
		schema: schema,

		tracer: tracer,
	}
}

type dbDocument struct {
	ID   string `db:"id"`
	Data []byte `db:"data"`
}

func (p *Postgres) table() string {
	return fmt.Sprintf("%s.documents", pq.QuoteIdentifier(p.schema))
}

func (p *Postgres) startSpan(ctx context.Context, name, collection string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("documentstore.collection", collection),
	))
}

func (p *Postgres) Get(ctx context.Context, collection, id string, out any) error {
	ctx, span := p.startSpan(ctx, "Postgres.Get", collection)
	defer span.End()

	var data []byte
	err := p.db.GetContext(ctx, &data, fmt.Sprintf(
		`SELECT data FROM %s WHERE collection = $1 AND id = $2`,
		p.table(),
	), collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		err := fmt.Errorf("failed to select document: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
			"id":         id,
		})
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		err := fmt.Errorf("failed to unmarshal document: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
			"id":         id,
		})
		return err
	}

	return nil
}

func (p *Postgres) marshal(ctx context.Context, collection, id string, doc any) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		err := fmt.Errorf("failed to marshal document: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
			"id":         id,
		})
		return nil, err
	}
	return data, nil
}

func (p *Postgres) Create(ctx context.Context, collection, id string, doc any) error {
	ctx, span := p.startSpan(ctx, "Postgres.Create", collection)
	defer span.End()

	data, err := p.marshal(ctx, collection, id, doc)
	if err != nil {
		// NOTE: marshal handles its own error reporting
		return err
	}

	result, err := p.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s
		(collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO NOTHING`,
		p.table(),
	), collection, id, data)
	if err != nil {
		err := fmt.Errorf("failed to insert document: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
			"id":         id,
		})
		return err
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("failed to get rows affected: %w", err)
		reporting.Report(ctx, err)
		return err
	}
	if inserted == 0 {
		return ErrAlreadyExists
	}

	return nil
}

func (p *Postgres) Put(ctx context.Context, collection, id string, doc any) error {
	ctx, span := p.startSpan(ctx, "Postgres.Put", collection)
	defer span.End()

	data, err := p.marshal(ctx, collection, id, doc)
	if err != nil {
		// NOTE: marshal handles its own error reporting
		return err
	}

	_, err = p.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s
		(collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id)
		DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = NOW()`,
		p.table(),
	), collection, id, data)
	if err != nil {
		err := fmt.Errorf("failed to upsert document: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
			"id":         id,
		})
		return err
	}

	return nil
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	ctx, span := p.startSpan(ctx, "Postgres.Delete", collection)
	defer span.End()

	result, err := p.db.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE collection = $1 AND id = $2`,
		p.table(),
	), collection, id)
	if err != nil {
		err := fmt.Errorf("failed to delete document: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
			"id":         id,
		})
		return err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("failed to get rows affected: %w", err)
		reporting.Report(ctx, err)
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}

	return nil
}

func (p *Postgres) List(ctx context.Context, collection string) ([]Document, error) {
	ctx, span := p.startSpan(ctx, "Postgres.List", collection)
	defer span.End()

	var rows []dbDocument
	err := p.db.SelectContext(ctx, &rows, fmt.Sprintf(
		`SELECT id, data FROM %s WHERE collection = $1 ORDER BY id`,
		p.table(),
	), collection)
	if err != nil {
		err := fmt.Errorf("failed to select documents: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"collection": collection,
		})
		return nil, err
	}

	documents := make([]Document, 0, len(rows))
	for _, row := range rows {
		data := row.Data
		documents = append(documents, Document{
			ID: row.ID,
			decode: func(out any) error {
				return json.Unmarshal(data, out)
			},
		})
	}

	return documents, nil
}

func (p *Postgres) Increment(ctx context.Context, collection, id string, deltas map[string]int) error {
	ctx, span := p.startSpan(ctx, "Postgres.Increment", collection)
	defer span.End()

	if len(deltas) == 0 {
		return nil
	}

	txx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("failed to start transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}
	defer txx.Rollback()

	for field, delta := range deltas {
		path := pq.Array(strings.Split(field, "."))
		result, err := txx.ExecContext(ctx, fmt.Sprintf(
			`UPDATE %s
			SET
				data = jsonb_set(
					data,
					$3::text[],
					to_jsonb(COALESCE((data #>> $3::text[])::bigint, 0) + $4)
				),
				updated_at = NOW()
			WHERE collection = $1 AND id = $2`,
			p.table(),
		), collection, id, path, delta)
		if err != nil {
			err := fmt.Errorf("failed to increment field: %w", err)
			reporting.Report(ctx, err, map[string]string{
				"collection": collection,
				"id":         id,
				"field":      field,
			})
			return err
		}

		updated, err := result.RowsAffected()
		if err != nil {
			err := fmt.Errorf("failed to get rows affected: %w", err)
			reporting.Report(ctx, err)
			return err
		}
		if updated == 0 {
			return ErrNotFound
		}
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}

	return nil
}
