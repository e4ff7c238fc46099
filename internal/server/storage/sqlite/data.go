package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/callboard/internal/server/storage"
	"github.com/iudanet/callboard/pkg/api"
)

// QueryRows возвращает страницу строк ресурса.
// Returns ErrUnknownResource / ErrBadColumn on bad input.
func (s *Storage) QueryRows(ctx context.Context, resource string, q storage.Query) (*storage.Result, error) {
	spec, ok := resourceSpecs[resource]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownResource, resource)
	}

	where, args, err := buildWhere(spec, q)
	if err != nil {
		return nil, err
	}

	orderBy := spec.defaultOrder
	if q.OrderBy != "" {
		if _, ok := spec.column(q.OrderBy); !ok {
			return nil, fmt.Errorf("%w: %s", storage.ErrBadColumn, q.OrderBy)
		}
		orderBy = q.OrderBy
	}
	direction := "ASC"
	if q.Descending {
		direction = "DESC"
	}

	// Общее количество под теми же фильтрами
	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", spec.table, where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY %s %s, id %s LIMIT ? OFFSET ?",
		columnList(spec), spec.table, where, orderBy, direction, direction,
	)
	args = append(args, limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", resource, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result, err := scanRows(spec, rows)
	if err != nil {
		return nil, err
	}

	return &storage.Result{Rows: result, TotalCount: total}, nil
}

// InsertRow создает строку. Пустой id заменяется новым UUID, пустой
// created_at (если колонка есть) — текущим временем.
func (s *Storage) InsertRow(ctx context.Context, resource string, row api.Row) (api.Row, error) {
	spec, ok := resourceSpecs[resource]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownResource, resource)
	}

	values := make(map[string]any, len(row))
	for key, val := range row {
		if _, ok := spec.column(key); !ok {
			return nil, fmt.Errorf("%w: %s", storage.ErrBadColumn, key)
		}
		values[key] = val
	}

	if id, _ := values["id"].(string); id == "" {
		values["id"] = uuid.New().String()
	}
	if _, hasCol := spec.column("created_at"); hasCol {
		if created, _ := values["created_at"].(string); created == "" {
			values["created_at"] = time.Now().UTC().Format(time.RFC3339)
		}
	}

	names := make([]string, 0, len(values))
	placeholders := make([]string, 0, len(values))
	args := make([]any, 0, len(values))
	for _, col := range spec.columns {
		val, ok := values[col.name]
		if !ok {
			continue
		}
		names = append(names, col.name)
		placeholders = append(placeholders, "?")
		args = append(args, val)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		spec.table, strings.Join(names, ", "), strings.Join(placeholders, ", "),
	)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", resource, err)
	}

	id, _ := values["id"].(string)
	return s.getRow(ctx, spec, resource, id)
}

// UpdateRow изменяет перечисленные в patch колонки строки.
// Returns ErrRowNotFound if the row doesn't exist.
func (s *Storage) UpdateRow(ctx context.Context, resource, id string, patch api.Row) (api.Row, error) {
	spec, ok := resourceSpecs[resource]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownResource, resource)
	}

	sets := make([]string, 0, len(patch))
	args := make([]any, 0, len(patch)+1)
	for _, col := range spec.columns {
		if col.name == "id" {
			continue
		}
		val, ok := patch[col.name]
		if !ok {
			continue
		}
		sets = append(sets, col.name+" = ?")
		args = append(args, val)
	}
	for key := range patch {
		if _, ok := spec.column(key); !ok {
			return nil, fmt.Errorf("%w: %s", storage.ErrBadColumn, key)
		}
	}
	if len(sets) == 0 {
		return s.getRow(ctx, spec, resource, id)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", spec.table, strings.Join(sets, ", "))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", resource, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, storage.ErrRowNotFound
	}

	return s.getRow(ctx, spec, resource, id)
}

// DeleteRow удаляет строку.
// Returns ErrRowNotFound if the row doesn't exist.
func (s *Storage) DeleteRow(ctx context.Context, resource, id string) error {
	spec, ok := resourceSpecs[resource]
	if !ok {
		return fmt.Errorf("%w: %s", storage.ErrUnknownResource, resource)
	}

	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ?", spec.table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", resource, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrRowNotFound
	}

	return nil
}

// getRow возвращает одну строку в каноническом виде
func (s *Storage) getRow(ctx context.Context, spec *resourceSpec, resource, id string) (api.Row, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", columnList(spec), spec.table)

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s row: %w", resource, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	scanned, err := scanRows(spec, rows)
	if err != nil {
		return nil, err
	}
	if len(scanned) == 0 {
		return nil, storage.ErrRowNotFound
	}
	return scanned[0], nil
}

// buildWhere строит WHERE из фильтров и tenant scope
func buildWhere(spec *resourceSpec, q storage.Query) (string, []any, error) {
	conds := make([]string, 0, len(q.Filters)+1)
	args := make([]any, 0, len(q.Filters)+1)

	// Детерминированный порядок условий
	for _, col := range spec.columns {
		val, ok := q.Filters[col.name]
		if !ok {
			continue
		}
		conds = append(conds, col.name+" = ?")
		args = append(args, val)
	}
	for key := range q.Filters {
		if _, ok := spec.column(key); !ok {
			return "", nil, fmt.Errorf("%w: %s", storage.ErrBadColumn, key)
		}
	}

	if q.Scope != nil {
		// Глобальные записи (tenant_id '') видны в любом scope
		conds = append(conds, "tenant_id IN ('', ?)")
		args = append(args, *q.Scope)
	}

	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func columnList(spec *resourceSpec) string {
	names := make([]string, len(spec.columns))
	for i, col := range spec.columns {
		names[i] = col.name
	}
	return strings.Join(names, ", ")
}

// scanRows читает строки в api.Row по типам колонок реестра
func scanRows(spec *resourceSpec, rows *sql.Rows) ([]api.Row, error) {
	var result []api.Row

	for rows.Next() {
		targets := make([]any, len(spec.columns))
		for i, col := range spec.columns {
			if col.typ == colInt {
				targets[i] = new(sql.NullInt64)
			} else {
				targets[i] = new(sql.NullString)
			}
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(api.Row, len(spec.columns))
		for i, col := range spec.columns {
			switch val := targets[i].(type) {
			case *sql.NullInt64:
				if val.Valid {
					row[col.name] = val.Int64
				} else if !col.nullable {
					row[col.name] = int64(0)
				}
			case *sql.NullString:
				if val.Valid {
					row[col.name] = val.String
				} else if !col.nullable {
					row[col.name] = ""
				}
			}
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
