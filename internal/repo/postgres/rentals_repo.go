package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dardanh/fieldhub/internal/domain/field"
	"github.com/dardanh/fieldhub/internal/domain/rental"
	"github.com/dardanh/fieldhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RentalsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRentalsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RentalsRepo {
	return &RentalsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *RentalsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

const rentalColumns = `id, user_id, sport_field_id, terrain_name, price_per_day, start_date, end_date, created_at, updated_at`

func scanRental(row pgx.Row) (rental.Rental, error) {
	var r rental.Rental

	err := row.Scan(&r.ID, &r.UserID, &r.SportFieldID, &r.TerrainName, &r.PricePerDay, &r.StartDate, &r.EndDate, &r.CreatedAt, &r.UpdatedAt)

	return r, err
}

func (repo *RentalsRepo) collect(rows pgx.Rows) ([]rental.Rental, error) {
	defer rows.Close()

	rentals := make([]rental.Rental, 0)

	for rows.Next() {
		r, err := scanRental(rows)

		if err != nil {
			return nil, err
		}

		rentals = append(rentals, r)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return rentals, nil
}

func (repo *RentalsRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return repo.pool.BeginTx(ctx, pgx.TxOptions{})
}

// CreateTx books a field inside the caller's transaction.
//
// The field row is locked FOR UPDATE so the overlap re-check and the insert
// are atomic with respect to concurrent bookings of the same field. With
// overlapGuard off only the field existence check and the price snapshot
// remain (the original system relied on the client-side pre-check alone).
func (repo *RentalsRepo) CreateTx(ctx context.Context, tx pgx.Tx, req rental.CreateRentalRequest, overlapGuard bool) (created rental.Rental, err error) {
	// lock field row + snapshot terrain name and day price

	var terrainName string
	var pricePerDay int

	err = repo.observe("rentals.create_tx.field_lock", func() error {
		return tx.QueryRow(ctx, `
			SELECT terrain_name, price
			FROM sport_fields
			WHERE id = $1
			FOR UPDATE
		`, req.SportFieldID).Scan(&terrainName, &pricePerDay)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = field.ErrNotFound
		}

		return
	}

	r := rental.NewFromCreateRequest(req, terrainName, pricePerDay)

	if overlapGuard {
		// same inclusive predicate as ListOverlapping

		var conflicts int

		err = repo.observe("rentals.create_tx.overlap_check", func() error {
			return tx.QueryRow(ctx, `
				SELECT COUNT(*)
				FROM rentals
				WHERE sport_field_id = $1
				  AND start_date <= $3
				  AND end_date >= $2
			`, r.SportFieldID, r.StartDate, r.EndDate).Scan(&conflicts)
		})

		if err != nil {
			return
		}

		if conflicts > 0 {
			err = rental.ErrDatesUnavailable
			return
		}
	}

	err = repo.observe("rentals.create_tx.insert", func() error {
		_, e := tx.Exec(ctx, `
			INSERT INTO rentals (id, user_id, sport_field_id, terrain_name, price_per_day, start_date, end_date, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`, r.ID, r.UserID, r.SportFieldID, r.TerrainName, r.PricePerDay, r.StartDate, r.EndDate, r.CreatedAt, r.UpdatedAt)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			err = field.ErrNotFound
		}
		return
	}

	created = r
	return
}

func (repo *RentalsRepo) ListAll(ctx context.Context) (rentals []rental.Rental, err error) {
	var rows pgx.Rows

	err = repo.observe("rentals.list_all", func() error {
		rows, err = repo.pool.Query(ctx, `
			SELECT `+rentalColumns+`
			FROM rentals
			ORDER BY start_date ASC, id ASC
		`)
		return err
	})

	if err != nil {
		return
	}

	return repo.collect(rows)
}

func (repo *RentalsRepo) ListByUser(ctx context.Context, userID string) (rentals []rental.Rental, err error) {
	var rows pgx.Rows

	err = repo.observe("rentals.list_by_user", func() error {
		rows, err = repo.pool.Query(ctx, `
			SELECT `+rentalColumns+`
			FROM rentals
			WHERE user_id = $1
			ORDER BY start_date ASC, id ASC
		`, userID)
		return err
	})

	if err != nil {
		return
	}

	return repo.collect(rows)
}

// ListOverlapping returns the rentals of a field that share at least one day
// with [start, end]. Dates are inclusive on both ends, so the predicate is
// start_date <= end AND end_date >= start.
func (repo *RentalsRepo) ListOverlapping(ctx context.Context, fieldID string, start, end time.Time) (rentals []rental.Rental, err error) {
	var rows pgx.Rows

	err = repo.observe("rentals.list_overlapping", func() error {
		rows, err = repo.pool.Query(ctx, `
			SELECT `+rentalColumns+`
			FROM rentals
			WHERE sport_field_id = $1
			  AND start_date <= $3
			  AND end_date >= $2
			ORDER BY start_date ASC, id ASC
		`, fieldID, rental.Day(start), rental.Day(end))
		return err
	})

	if err != nil {
		return
	}

	return repo.collect(rows)
}

// ListActiveFrom seeds the unavailable-dates map: rentals still running on
// the given day, or starting in the future.
func (repo *RentalsRepo) ListActiveFrom(ctx context.Context, start time.Time) (rentals []rental.Rental, err error) {
	var rows pgx.Rows

	err = repo.observe("rentals.list_active_from", func() error {
		rows, err = repo.pool.Query(ctx, `
			SELECT `+rentalColumns+`
			FROM rentals
			WHERE end_date >= $1 OR start_date >= NOW()
			ORDER BY start_date ASC, id ASC
		`, rental.Day(start))
		return err
	})

	if err != nil {
		return
	}

	return repo.collect(rows)
}

func (repo *RentalsRepo) GetByID(ctx context.Context, id string) (rental.Rental, error) {
	var r rental.Rental
	var err error

	err = repo.observe("rentals.get_by_id", func() error {
		r, err = scanRental(repo.pool.QueryRow(ctx, `
			SELECT `+rentalColumns+`
			FROM rentals
			WHERE id = $1
		`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rental.Rental{}, rental.ErrNotFound
		}

		return rental.Rental{}, err
	}

	return r, nil
}

// Delete removes a rental entirely; cancellation keeps no state behind.
func (repo *RentalsRepo) Delete(ctx context.Context, id string) (err error) {
	var tag pgconn.CommandTag

	err = repo.observe("rentals.delete", func() error {
		var e error
		tag, e = repo.pool.Exec(ctx, `DELETE FROM rentals WHERE id = $1`, id)
		return e
	})

	if err != nil {
		return
	}

	if tag.RowsAffected() == 0 {
		err = rental.ErrNotFound
		return
	}

	return
}
