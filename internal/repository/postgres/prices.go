package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahkoseuranta/spothinta-service/internal/domain"
	"github.com/sahkoseuranta/spothinta-service/internal/repository"
)

// PriceRepo — репозиторий таблицы часовых цен (price_points).
type PriceRepo struct {
	db *pgxpool.Pool
}

// NewPriceRepository - создаёт репозиторий цен на основе пула соединений.
func NewPriceRepository(db *pgxpool.Pool) *PriceRepo {
	return &PriceRepo{db: db}
}

// UpsertPoints - сохраняет точки серии одним батчем.
// Час - естественный ключ: повторная загрузка того же дня обновляет цену.
// Точки без метки времени не сохраняются, им нечем ключеваться.
func (r *PriceRepo) UpsertPoints(ctx context.Context, points []domain.PricePoint) error {
	query := `
		INSERT INTO price_points (ts, eur_per_mwh, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (ts)
		DO UPDATE SET eur_per_mwh = EXCLUDED.eur_per_mwh,
		              updated_at = now()`

	batch := &pgx.Batch{}
	queued := 0
	for _, p := range points {
		if !p.TimeKnown {
			continue
		}
		batch.Queue(query, p.Time, p.EurPerMWh)
		queued++
	}
	if queued == 0 {
		return nil
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < queued; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// History - точки интервала [from, to] по возрастанию времени.
func (r *PriceRepo) History(ctx context.Context, from, to time.Time) ([]domain.PricePoint, error) {
	query := `
        SELECT ts, eur_per_mwh
        FROM price_points
        WHERE ts >= $1 AND ts <= $2
        ORDER BY ts
    `
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PricePoint
	for rows.Next() {
		p := domain.PricePoint{TimeKnown: true}
		if err := rows.Scan(&p.Time, &p.EurPerMWh); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// MinMax - самая дешёвая и самая дорогая точка интервала [from, to].
func (r *PriceRepo) MinMax(ctx context.Context, from, to time.Time) (min, max domain.PricePoint, err error) {
	// min
	minQuery := `
        SELECT ts, eur_per_mwh
        FROM price_points
        WHERE ts >= $1 AND ts <= $2
        ORDER BY eur_per_mwh
        LIMIT 1
    `
	row := r.db.QueryRow(ctx, minQuery, from, to)
	err = row.Scan(&min.Time, &min.EurPerMWh)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PricePoint{}, domain.PricePoint{}, repository.ErrNotFound
	}
	if err != nil {
		return domain.PricePoint{}, domain.PricePoint{}, err
	}
	min.TimeKnown = true

	// max
	maxQuery := `
        SELECT ts, eur_per_mwh
        FROM price_points
        WHERE ts >= $1 AND ts <= $2
        ORDER BY eur_per_mwh DESC
        LIMIT 1
    `
	row = r.db.QueryRow(ctx, maxQuery, from, to)
	err = row.Scan(&max.Time, &max.EurPerMWh)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PricePoint{}, domain.PricePoint{}, repository.ErrNotFound
	}
	if err != nil {
		return domain.PricePoint{}, domain.PricePoint{}, err
	}
	max.TimeKnown = true
	return min, max, nil
}
