package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/updown-bet-platform-poc/internal/price-service/dto"
)

type ReadRepo struct {
	DB *sql.DB
}

func (r *ReadRepo) ListReferences(ctx context.Context) ([]dto.Reference, error) {
	const q = `
		SELECT reference
		FROM price_current
		ORDER BY reference;
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.Reference
	for rows.Next() {
		var ref dto.Reference
		if err := rows.Scan(&ref.Reference); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (r *ReadRepo) GetCurrent(ctx context.Context, reference string) (dto.Price, error) {
	const q = `
		SELECT reference, price, sequence, to_char(observed_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM price_current
		WHERE reference = $1;
	`
	var p dto.Price
	var price, seq int64
	err := r.DB.QueryRowContext(ctx, q, reference).Scan(&p.Reference, &price, &seq, &p.ObservedAt)
	if err != nil {
		return dto.Price{}, err
	}
	p.Price = uint64(price)
	p.Sequence = uint64(seq)
	return p, nil
}

func (r *ReadRepo) History(ctx context.Context, reference string, limit int) ([]dto.Price, error) {
	const q = `
		SELECT reference, price, sequence, to_char(observed_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM price_history
		WHERE reference = $1
		ORDER BY observed_at DESC
		LIMIT $2;
	`
	rows, err := r.DB.QueryContext(ctx, q, reference, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.Price
	for rows.Next() {
		var p dto.Price
		var price, seq int64
		if err := rows.Scan(&p.Reference, &price, &seq, &p.ObservedAt); err != nil {
			return nil, err
		}
		p.Price = uint64(price)
		p.Sequence = uint64(seq)
		out = append(out, p)
	}
	return out, rows.Err()
}
