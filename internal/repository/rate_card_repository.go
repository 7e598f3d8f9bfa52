package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/towline/service-towing/internal/common/domain"
	bookingDomain "github.com/towline/service-towing/internal/domain/booking"
)

// RateCardModel is the GORM model for the rate_cards table, keyed by tow
// truck class.
type RateCardModel struct {
	TruckClass          string    `gorm:"type:varchar(5);primaryKey"`
	BasePriceCents      int64     `gorm:"not null"`
	PerKmRateCents      int64     `gorm:"not null"`
	ManeuverChargeCents int64     `gorm:"not null"`
	CreatedAt           time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt           time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

func (RateCardModel) TableName() string { return "rate_cards" }

// GormRateCardRepository serves rate cards from the database. It implements
// bookingDomain.RateCardProvider for quote computation and exposes admin
// list/update operations.
type GormRateCardRepository struct {
	db *gorm.DB
}

func NewGormRateCardRepository(db *gorm.DB) *GormRateCardRepository {
	return &GormRateCardRepository{db: db}
}

// Seed inserts the built-in rate table for any truck class that has no row
// yet. Existing rows are left untouched so admin edits survive restarts.
func (r *GormRateCardRepository) Seed(ctx context.Context) error {
	for class, card := range bookingDomain.DefaultRateCards {
		var count int64
		if err := r.db.WithContext(ctx).Model(&RateCardModel{}).
			Where("truck_class = ?", string(class)).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check rate card %s: %w", class, err)
		}
		if count > 0 {
			continue
		}

		now := time.Now().UTC()
		model := RateCardModel{
			TruckClass:          string(class),
			BasePriceCents:      card.BasePriceCents,
			PerKmRateCents:      card.PerKmRateCents,
			ManeuverChargeCents: card.ManeuverChargeCents,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			return fmt.Errorf("failed to seed rate card %s: %w", class, err)
		}
	}
	return nil
}

// RateCard returns the stored rate card for a truck class.
func (r *GormRateCardRepository) RateCard(ctx context.Context, class bookingDomain.TowTruckClass) (bookingDomain.RateCard, error) {
	var model RateCardModel
	if err := r.db.WithContext(ctx).Where("truck_class = ?", string(class)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bookingDomain.RateCard{}, domain.NewNotFoundError("RateCard", string(class))
		}
		return bookingDomain.RateCard{}, fmt.Errorf("failed to load rate card: %w", err)
	}
	return bookingDomain.RateCard{
		BasePriceCents:      model.BasePriceCents,
		PerKmRateCents:      model.PerKmRateCents,
		ManeuverChargeCents: model.ManeuverChargeCents,
	}, nil
}

// ListAll returns every stored rate card keyed by truck class (admin).
func (r *GormRateCardRepository) ListAll(ctx context.Context) (map[bookingDomain.TowTruckClass]bookingDomain.RateCard, error) {
	var models []RateCardModel
	if err := r.db.WithContext(ctx).Order("truck_class ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list rate cards: %w", err)
	}

	cards := make(map[bookingDomain.TowTruckClass]bookingDomain.RateCard, len(models))
	for _, m := range models {
		cards[bookingDomain.TowTruckClass(m.TruckClass)] = bookingDomain.RateCard{
			BasePriceCents:      m.BasePriceCents,
			PerKmRateCents:      m.PerKmRateCents,
			ManeuverChargeCents: m.ManeuverChargeCents,
		}
	}
	return cards, nil
}

// Update replaces the rate card for a truck class (admin). Already-created
// bookings keep their snapshotted quotes.
func (r *GormRateCardRepository) Update(ctx context.Context, class bookingDomain.TowTruckClass, card bookingDomain.RateCard) error {
	result := r.db.WithContext(ctx).
		Model(&RateCardModel{}).
		Where("truck_class = ?", string(class)).
		Updates(map[string]interface{}{
			"base_price_cents":      card.BasePriceCents,
			"per_km_rate_cents":     card.PerKmRateCents,
			"maneuver_charge_cents": card.ManeuverChargeCents,
			"updated_at":            time.Now().UTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update rate card: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("RateCard", string(class))
	}
	return nil
}
