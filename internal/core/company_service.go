package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CompanyService reads the fixed company set. Companies are reference data
// seeded by the migrations and never mutated at runtime.
type CompanyService interface {
	GetByCode(ctx context.Context, code string) (*Company, error)
	GetByID(ctx context.Context, id int) (*Company, error)
	List(ctx context.Context) ([]Company, error)
}

type companyService struct {
	pool *pgxpool.Pool
}

func NewCompanyService(pool *pgxpool.Pool) CompanyService {
	return &companyService{pool: pool}
}

const companyColumns = "id, code, name, role, vendor_code, production_email, created_at"

func scanCompany(row pgx.Row) (*Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Role, &c.VendorCode, &c.ProductionEmail, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *companyService) GetByCode(ctx context.Context, code string) (*Company, error) {
	c, err := scanCompany(s.pool.QueryRow(ctx,
		"SELECT "+companyColumns+" FROM companies WHERE code = $1", code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch company %s: %w", code, err)
	}
	return c, nil
}

func (s *companyService) GetByID(ctx context.Context, id int) (*Company, error) {
	c, err := scanCompany(s.pool.QueryRow(ctx,
		"SELECT "+companyColumns+" FROM companies WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch company %d: %w", id, err)
	}
	return c, nil
}

func (s *companyService) List(ctx context.Context) ([]Company, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+companyColumns+" FROM companies ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Role, &c.VendorCode, &c.ProductionEmail, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, nil
}
