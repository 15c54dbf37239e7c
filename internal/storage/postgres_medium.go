package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const kvTable = "kv_items"

//go:embed migrations/*.sql
var migrations embed.FS

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresMedium хранит пары ключ-значение в таблице kv_items.
type PostgresMedium struct {
	storage *pgxpool.Pool
}

func NewPostgresMedium(storage *pgxpool.Pool) *PostgresMedium {
	return &PostgresMedium{storage: storage}
}

// Migrate применяет встроенные миграции goose.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}
	return nil
}

func (p *PostgresMedium) GetItem(ctx context.Context, key string) (string, bool, error) {
	query, args, err := psql.Select("value").From(kvTable).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return "", false, err
	}
	var value string
	err = p.storage.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("ошибка чтения %s: %w", key, err)
	}
	return value, true, nil
}

func (p *PostgresMedium) SetItem(ctx context.Context, key, value string) error {
	query, args, err := psql.Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, value, sq.Expr("now()")).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := p.storage.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка записи %s: %w", key, err)
	}
	return nil
}

func (p *PostgresMedium) RemoveItem(ctx context.Context, key string) error {
	query, args, err := psql.Delete(kvTable).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return err
	}
	_, err = p.storage.Exec(ctx, query, args...)
	return err
}

func (p *PostgresMedium) Keys(ctx context.Context, prefix string) ([]string, error) {
	query, args, err := psql.Select("key").From(kvTable).
		Where(sq.Like{"key": escapeLike(prefix) + "%"}).
		OrderBy("key").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := p.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeReplacer.Replace(s)
}
