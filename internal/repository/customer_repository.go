package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/dealer-service/internal/domain"
)

// CustomerRepository handles persistence for customer records.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	SearchByEmail(ctx context.Context, prefix string, limit int) ([]domain.Customer, error)
	List(ctx context.Context, limit, offset int) ([]domain.Customer, error)
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository instantiates the repository.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

const customerColumns = `id, first_name, last_name, email, phone_number, created_at, updated_at`

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var customer domain.Customer
	if err := row.Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.PhoneNumber,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (first_name, last_name, email, phone_number)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.PhoneNumber,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	const query = `
        UPDATE customers
        SET first_name=$1, last_name=$2, email=$3, phone_number=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.PhoneNumber,
		customer.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id=$1`
	return scanCustomer(r.pool.QueryRow(ctx, query, id))
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE LOWER(email)=LOWER($1)`
	return scanCustomer(r.pool.QueryRow(ctx, query, email))
}

func (r *customerRepository) SearchByEmail(ctx context.Context, prefix string, limit int) ([]domain.Customer, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email ILIKE $1 || '%' ORDER BY email LIMIT $2`

	rows, err := r.pool.Query(ctx, query, prefix, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCustomers(rows)
}

func (r *customerRepository) List(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCustomers(rows)
}

func collectCustomers(rows pgx.Rows) ([]domain.Customer, error) {
	var customers []domain.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *customer)
	}
	return customers, rows.Err()
}
