package enrich

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/FocuswithJustin/famtree/core/errors"
)

// TableName is the SQLite table holding enrichment rows.
const TableName = "enrichment"

// sqliteColumns lists the enrichment table columns in Record field order.
var sqliteColumns = []string{
	"id", "gender",
	"birth_date", "birth_place", "birth_lat", "birth_long", "birth_geo_id",
	"death_date", "death_place", "death_lat", "death_long", "death_geo_id",
	"burial_place", "burial_lat", "burial_long", "burial_geo_id",
}

// createTableSQL creates the enrichment table if it does not exist.
var createTableSQL = func() string {
	defs := make([]string, len(sqliteColumns))
	for i, col := range sqliteColumns {
		defs[i] = col + " TEXT NOT NULL DEFAULT ''"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", TableName, strings.Join(defs, ", "))
}()

// LoadSQLite reads the enrichment table in insertion order. A database without the
// table yields a *errors.NotFoundError.
func LoadSQLite(ctx context.Context, db *sql.DB) (*Table, error) {
	var name string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", TableName).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("table", TableName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", TableName, err)
	}

	selects := make([]string, len(sqliteColumns))
	for i, col := range sqliteColumns {
		selects[i] = fmt.Sprintf("COALESCE(%s, '')", col)
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(selects, ", "), TableName)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", TableName, err)
	}
	defer rows.Close()

	table := NewTable(nil)
	for rows.Next() {
		var r Record
		if err := rows.Scan(scanTargets(&r)...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", TableName, err)
		}
		r.ID = strings.TrimSpace(r.ID)
		if r.ID == "" {
			continue
		}
		table.Add(r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TableName, err)
	}

	return table, nil
}

// StoreSQLite replaces the contents of the enrichment table with table, creating it
// if needed. The replacement happens in a single transaction.
func StoreSQLite(ctx context.Context, db *sql.DB, table *Table) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create %s: %w", TableName, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+TableName); err != nil {
		return fmt.Errorf("failed to clear %s: %w", TableName, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(sqliteColumns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		TableName, strings.Join(sqliteColumns, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range table.Records() {
		if _, err := stmt.ExecContext(ctx, values(r)...); err != nil {
			return fmt.Errorf("failed to insert id %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

func scanTargets(r *Record) []any {
	return []any{
		&r.ID, &r.Gender,
		&r.BirthDate, &r.BirthPlace.Name, &r.BirthPlace.Latitude, &r.BirthPlace.Longitude, &r.BirthPlace.GeoID,
		&r.DeathDate, &r.DeathPlace.Name, &r.DeathPlace.Latitude, &r.DeathPlace.Longitude, &r.DeathPlace.GeoID,
		&r.BurialPlace.Name, &r.BurialPlace.Latitude, &r.BurialPlace.Longitude, &r.BurialPlace.GeoID,
	}
}

func values(r Record) []any {
	return []any{
		r.ID, r.Gender,
		r.BirthDate, r.BirthPlace.Name, r.BirthPlace.Latitude, r.BirthPlace.Longitude, r.BirthPlace.GeoID,
		r.DeathDate, r.DeathPlace.Name, r.DeathPlace.Latitude, r.DeathPlace.Longitude, r.DeathPlace.GeoID,
		r.BurialPlace.Name, r.BurialPlace.Latitude, r.BurialPlace.Longitude, r.BurialPlace.GeoID,
	}
}
