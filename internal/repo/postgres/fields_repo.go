package postgres

import (
	"context"
	"errors"

	"github.com/dardanh/fieldhub/internal/domain/field"
	"github.com/dardanh/fieldhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FieldsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewFieldsRepo(pool *pgxpool.Pool, prom *observability.Prom) *FieldsRepo {
	return &FieldsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *FieldsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

const fieldColumns = `id, sport_type, terrain_name, dimension, terrain_type, price, url_path, created_at, updated_at`

func scanField(row pgx.Row) (field.SportField, error) {
	var f field.SportField

	err := row.Scan(&f.ID, &f.SportType, &f.TerrainName, &f.Dimension, &f.TerrainType, &f.Price, &f.URLPath, &f.CreatedAt, &f.UpdatedAt)

	return f, err
}

func (repo *FieldsRepo) Create(ctx context.Context, f field.SportField) (field.SportField, error) {
	err := repo.observe("fields.create", func() error {
		_, e := repo.pool.Exec(ctx, `
			INSERT INTO sport_fields (id, sport_type, terrain_name, dimension, terrain_type, price, url_path, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`, f.ID, f.SportType, f.TerrainName, f.Dimension, f.TerrainType, f.Price, f.URLPath, f.CreatedAt, f.UpdatedAt)
		return e
	})

	if err != nil {
		return field.SportField{}, err
	}

	return f, nil
}

func (repo *FieldsRepo) List(ctx context.Context) (fields []field.SportField, err error) {
	var rows pgx.Rows

	err = repo.observe("fields.list", func() error {
		rows, err = repo.pool.Query(ctx, `
			SELECT `+fieldColumns+`
			FROM sport_fields
			ORDER BY terrain_name ASC, id ASC
		`)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	fields = make([]field.SportField, 0)

	for rows.Next() {
		f, e := scanField(rows)

		if e != nil {
			err = e
			return
		}
		fields = append(fields, f)
	}

	err = rows.Err()

	return
}

func (repo *FieldsRepo) GetByID(ctx context.Context, id string) (field.SportField, error) {
	var f field.SportField
	var err error

	err = repo.observe("fields.get_by_id", func() error {
		f, err = scanField(repo.pool.QueryRow(ctx, `
			SELECT `+fieldColumns+`
			FROM sport_fields
			WHERE id = $1
		`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return field.SportField{}, field.ErrNotFound
		}

		return field.SportField{}, err
	}

	return f, nil
}

// ListBySportType is the non-uuid branch of GET /sportfields/:identifier.
func (repo *FieldsRepo) ListBySportType(ctx context.Context, sportType string) (fields []field.SportField, err error) {
	var rows pgx.Rows

	err = repo.observe("fields.list_by_sport_type", func() error {
		rows, err = repo.pool.Query(ctx, `
			SELECT `+fieldColumns+`
			FROM sport_fields
			WHERE UPPER(sport_type) = UPPER($1)
			ORDER BY terrain_name ASC, id ASC
		`, sportType)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	fields = make([]field.SportField, 0)

	for rows.Next() {
		f, e := scanField(rows)

		if e != nil {
			err = e
			return
		}
		fields = append(fields, f)
	}

	err = rows.Err()

	if err != nil {
		return
	}

	if len(fields) == 0 {
		err = field.ErrNotFound
	}

	return
}

func (repo *FieldsRepo) Update(ctx context.Context, id string, req field.UpdateFieldRequest, urlPath *string) (field.SportField, error) {
	var f field.SportField
	var err error

	// COALESCE keeps the stored image when no new file was uploaded
	err = repo.observe("fields.update", func() error {
		f, err = scanField(repo.pool.QueryRow(ctx, `
			UPDATE sport_fields
			SET sport_type = $2,
					terrain_name = $3,
					dimension = $4,
					terrain_type = $5,
					price = $6,
					url_path = COALESCE($7, url_path),
					updated_at = NOW()
			WHERE id = $1
			RETURNING `+fieldColumns+`
		`, id, req.SportType, req.TerrainName, req.Dimension, req.TerrainType, req.Price, urlPath))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return field.SportField{}, field.ErrNotFound
		}

		return field.SportField{}, err
	}

	return f, nil
}

// Delete removes a field together with its rentals in one transaction.
func (repo *FieldsRepo) Delete(ctx context.Context, id string) (err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return
	}

	defer func() { _ = tx.Rollback(ctx) }()

	err = repo.observe("fields.delete.rentals", func() error {
		_, e := tx.Exec(ctx, `DELETE FROM rentals WHERE sport_field_id = $1`, id)
		return e
	})

	if err != nil {
		return
	}

	var deleted int64

	err = repo.observe("fields.delete", func() error {
		tag, e := tx.Exec(ctx, `DELETE FROM sport_fields WHERE id = $1`, id)

		if e != nil {
			return e
		}

		deleted = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return
	}

	if deleted == 0 {
		err = field.ErrNotFound
		return
	}

	err = tx.Commit(ctx)

	return
}
