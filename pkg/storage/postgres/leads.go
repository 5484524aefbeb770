package postgres

import (
	"aviators/pkg/domain"
	"aviators/pkg/storage"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
)

const leadsTable = "leads"

func (p *PgSQL) StoreLead(ctx context.Context, lead domain.Lead) (*domain.Lead, error) {
	var row PgLead
	if err := row.FromDomain(lead); err != nil {
		return nil, err
	}
	row.Email = strings.ToLower(row.Email)

	var stored PgLead
	_, err := p.Builder.Insert(leadsTable).
		Rows(row).
		Returning(&PgLead{}).
		Executor().ScanStructContext(ctx, &stored)
	if isUniqueViolation(err) {
		return nil, storage.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("could not store lead into pg: %w", err)
	}

	return stored.ToDomain()
}

func (p *PgSQL) UpdateLead(ctx context.Context, lead domain.Lead) (*domain.Lead, error) {
	var row PgLead
	if err := row.FromDomain(lead); err != nil {
		return nil, err
	}

	var updated PgLead
	found, err := p.Builder.Update(leadsTable).
		Set(row.updateRecord()).
		Where(goqu.I("id").Eq(uuid.UUID(lead.ID))).
		Returning(&PgLead{}).
		Executor().ScanStructContext(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("could not update lead in pg: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return updated.ToDomain()
}

func (p *PgSQL) leadBy(ctx context.Context, where goqu.Expression) (*domain.Lead, error) {
	ds := p.Builder.From(leadsTable).Where(where)
	// lock the row so concurrent captures for the same lead serialise
	if _, inTx := p.DB.(*sql.Tx); inTx {
		ds = ds.ForUpdate(exp.Wait)
	}

	var row PgLead
	found, err := ds.Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch lead: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain()
}

func (p *PgSQL) LeadByID(ctx context.Context, id domain.LeadID) (*domain.Lead, error) {
	return p.leadBy(ctx, goqu.I("id").Eq(uuid.UUID(id)))
}

func (p *PgSQL) LeadByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	return p.leadBy(ctx, goqu.I("email").Eq(strings.ToLower(email)))
}

func (p *PgSQL) ListLeads(ctx context.Context,
	grade domain.LeadGrade,
	cursor storage.Cursor,
	limit uint) (storage.Leads, error) {
	var w []goqu.Expression
	if grade != "" {
		w = append(w, goqu.I("grade").Eq(string(grade)))
	}
	if !cursor.IsZero() {
		w = append(w, after("created_at", cursor))
	}

	var rows []PgLead
	if err := p.Builder.From(leadsTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(limit + 1).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.Leads{}, fmt.Errorf("could not list leads from pg: %w", err)
	}

	var nextCursor *storage.Cursor
	if uint(len(rows)) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = &storage.Cursor{At: last.CreatedAt, ID: last.ID}
	}

	leads, err := pgLeadsToDomain(rows)
	if err != nil {
		return storage.Leads{}, err
	}

	return storage.Leads{Leads: leads, NextCursor: nextCursor}, nil
}
