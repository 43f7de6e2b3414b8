package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const dealColumns = `id, title, slug, description, image_url, original_price, deal_price,
	discount_percent, product_url, retailer, category, is_active, expires_at, clicks, created_at`

type SQLDealRepository struct {
	db *DB
}

func NewDealRepository(db *DB) *SQLDealRepository {
	return &SQLDealRepository{db: db}
}

// FindBySlug returns nil, nil when no deal has the slug.
func (r *SQLDealRepository) FindBySlug(ctx context.Context, slug string) (*Deal, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+dealColumns+` FROM deals WHERE slug = ? LIMIT 1`, slug)

	deal, err := scanDeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find deal by slug: %w", err)
	}

	return deal, nil
}

// Insert stores a new deal and sets its ID.
func (r *SQLDealRepository) Insert(ctx context.Context, deal *Deal) error {
	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = time.Now().UTC()
	}

	var discount sql.NullInt64
	if deal.DiscountPercent != nil {
		discount = sql.NullInt64{Int64: int64(*deal.DiscountPercent), Valid: true}
	}

	var expiresAt sql.NullInt64
	if deal.ExpiresAt != nil {
		expiresAt = sql.NullInt64{Int64: deal.ExpiresAt.Unix(), Valid: true}
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO deals (
			title, slug, description, image_url, original_price, deal_price,
			discount_percent, product_url, retailer, category, is_active, expires_at, clicks, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		deal.Title, deal.Slug, deal.Description, deal.ImageURL, deal.OriginalPrice, deal.DealPrice,
		discount, deal.ProductURL, deal.Retailer, deal.Category, deal.IsActive, expiresAt,
		deal.Clicks, deal.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert deal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get deal id: %w", err)
	}
	deal.ID = id

	return nil
}

// GetActive returns up to limit active, unexpired deals, newest first.
func (r *SQLDealRepository) GetActive(ctx context.Context, limit int) ([]Deal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+dealColumns+`
		FROM deals
		WHERE is_active = 1 AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, time.Now().Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}
	defer rows.Close()

	var deals []Deal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		deals = append(deals, *deal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deals: %w", err)
	}

	return deals, nil
}

func (r *SQLDealRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deals`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count deals: %w", err)
	}
	return count, nil
}

func scanDeal(row scanner) (*Deal, error) {
	var deal Deal
	var description, imageURL, originalPrice, dealPrice sql.NullString
	var discount, expiresAt sql.NullInt64
	var createdAt int64

	err := row.Scan(
		&deal.ID, &deal.Title, &deal.Slug, &description, &imageURL, &originalPrice, &dealPrice,
		&discount, &deal.ProductURL, &deal.Retailer, &deal.Category, &deal.IsActive, &expiresAt,
		&deal.Clicks, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	deal.Description = description.String
	deal.ImageURL = imageURL.String
	deal.OriginalPrice = originalPrice.String
	deal.DealPrice = dealPrice.String
	deal.CreatedAt = time.Unix(createdAt, 0).UTC()

	if discount.Valid {
		percent := int(discount.Int64)
		deal.DiscountPercent = &percent
	}
	if expiresAt.Valid {
		expires := time.Unix(expiresAt.Int64, 0).UTC()
		deal.ExpiresAt = &expires
	}

	return &deal, nil
}
