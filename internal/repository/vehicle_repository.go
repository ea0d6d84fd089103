package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/dealer-service/internal/domain"
)

// VehicleRepository handles persistence for inventory vehicles.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	GetByVIN(ctx context.Context, vin string) (*domain.Vehicle, error)
	List(ctx context.Context, filter VehicleFilter) ([]domain.Vehicle, error)
	ListLocations(ctx context.Context) ([]domain.VehicleLocation, error)
	AssignCustomer(ctx context.Context, vehicleID, customerID string) error
}

// VehicleFilter defines query params for inventory listing.
type VehicleFilter struct {
	Make       *string
	Model      *string
	Status     *domain.VehicleStatus
	CustomerID *string
	Limit      int
	Offset     int
}

type vehicleRepository struct {
	pool *pgxpool.Pool
}

// NewVehicleRepository instantiates the repository.
func NewVehicleRepository(pool *pgxpool.Pool) VehicleRepository {
	return &vehicleRepository{pool: pool}
}

const vehicleColumns = `id, vin, make, model, year, price, status, latitude, longitude, customer_id, created_at, updated_at`

func scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	if err := row.Scan(
		&vehicle.ID,
		&vehicle.VIN,
		&vehicle.Make,
		&vehicle.Model,
		&vehicle.Year,
		&vehicle.Price,
		&vehicle.Status,
		&vehicle.Latitude,
		&vehicle.Longitude,
		&vehicle.CustomerID,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	const query = `
        INSERT INTO vehicles (vin, make, model, year, price, status, latitude, longitude, customer_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		vehicle.VIN,
		vehicle.Make,
		vehicle.Model,
		vehicle.Year,
		vehicle.Price,
		vehicle.Status,
		vehicle.Latitude,
		vehicle.Longitude,
		vehicle.CustomerID,
	).Scan(&vehicle.ID, &vehicle.CreatedAt, &vehicle.UpdatedAt)
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	const query = `
        UPDATE vehicles
        SET vin=$1, make=$2, model=$3, year=$4, price=$5, status=$6, latitude=$7, longitude=$8, customer_id=$9, updated_at=NOW()
        WHERE id=$10`

	cmd, err := r.pool.Exec(ctx, query,
		vehicle.VIN,
		vehicle.Make,
		vehicle.Model,
		vehicle.Year,
		vehicle.Price,
		vehicle.Status,
		vehicle.Latitude,
		vehicle.Longitude,
		vehicle.CustomerID,
		vehicle.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *vehicleRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM vehicles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id=$1`
	return scanVehicle(r.pool.QueryRow(ctx, query, id))
}

func (r *vehicleRepository) GetByVIN(ctx context.Context, vin string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE vin=$1`
	return scanVehicle(r.pool.QueryRow(ctx, query, vin))
}

func (r *vehicleRepository) List(ctx context.Context, filter VehicleFilter) ([]domain.Vehicle, error) {
	clauses := make([]string, 0, 4)
	args := make([]any, 0, 6)

	if filter.Make != nil {
		args = append(args, *filter.Make)
		clauses = append(clauses, fmt.Sprintf("make=$%d", len(args)))
	}
	if filter.Model != nil {
		args = append(args, *filter.Model)
		clauses = append(clauses, fmt.Sprintf("model=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}

	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *vehicle)
	}
	return vehicles, rows.Err()
}

func (r *vehicleRepository) ListLocations(ctx context.Context) ([]domain.VehicleLocation, error) {
	const query = `
        SELECT id, vin, make, model, status, latitude, longitude
        FROM vehicles
        WHERE latitude IS NOT NULL AND longitude IS NOT NULL`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []domain.VehicleLocation
	for rows.Next() {
		var loc domain.VehicleLocation
		if err := rows.Scan(&loc.ID, &loc.VIN, &loc.Make, &loc.Model, &loc.Status, &loc.Latitude, &loc.Longitude); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (r *vehicleRepository) AssignCustomer(ctx context.Context, vehicleID, customerID string) error {
	const query = `
        UPDATE vehicles SET customer_id=$1, status=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, customerID, domain.VehicleStatusReserved, vehicleID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
