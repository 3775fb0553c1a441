package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/msarisk/internal/model"
	embedsql "github.com/gyeh/msarisk/internal/sql"
)

// Source reads the four raw tables from the claims schema. It satisfies
// store.Source.
type Source struct {
	pool *pgxpool.Pool
}

// NewSource returns a Source over pool.
func NewSource(pool *pgxpool.Pool) *Source {
	return &Source{pool: pool}
}

func (s *Source) Name() string { return "postgres:claims" }

func (s *Source) Services(ctx context.Context) ([]model.ServiceRow, error) {
	return query(ctx, s.pool, embedsql.SelectServices, func(row pgx.CollectableRow) (model.ServiceRow, error) {
		var r model.ServiceRow
		err := row.Scan(
			&r.PersonKey, &r.ClaimKey,
			&r.FromDate, &r.ToDate, &r.PaidDate, &r.AdmissionDate, &r.DischargeDate,
			&r.DiagnosisLabel, &r.ServiceSetting,
			&r.Copay, &r.Deductible, &r.Coinsurance, &r.AmountPaid,
		)
		return r, err
	})
}

func (s *Source) Members(ctx context.Context) ([]model.MemberRow, error) {
	return query(ctx, s.pool, embedsql.SelectMembers, func(row pgx.CollectableRow) (model.MemberRow, error) {
		var r model.MemberRow
		err := row.Scan(&r.PersonKey, &r.MSAName, &r.State, &r.Race, &r.Ethnicity, &r.Gender)
		return r, err
	})
}

func (s *Source) Enrollment(ctx context.Context) ([]model.EnrollmentRow, error) {
	return query(ctx, s.pool, embedsql.SelectEnrollment, func(row pgx.CollectableRow) (model.EnrollmentRow, error) {
		var r model.EnrollmentRow
		err := row.Scan(&r.PersonKey, &r.CoverageStart, &r.CoverageEnd, &r.ProductLine)
		return r, err
	})
}

func (s *Source) Providers(ctx context.Context) ([]model.ProviderRow, error) {
	return query(ctx, s.pool, embedsql.SelectProviders, func(row pgx.CollectableRow) (model.ProviderRow, error) {
		var r model.ProviderRow
		err := row.Scan(&r.ProviderKey, &r.NPI, &r.Specialty, &r.State, &r.MSAName)
		return r, err
	})
}

func query[T any](ctx context.Context, pool *pgxpool.Pool, sql string, scan pgx.RowToFunc[T]) ([]T, error) {
	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	out, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}
	return out, nil
}
