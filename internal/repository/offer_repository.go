package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ThinkGrid-Labs/altis-engine/internal/altiserr"
	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
)

// OfferRepository owns durable offer persistence. Offers also live in the
// cache with a shorter TTL (see offerCacheKey and the SetJSON/GetJSON calls
// in internal/offer/offer.go) — the durable store is authoritative on conflict.
type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) Create(ctx context.Context, offer *models.Offer) error {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return altiserr.NewInternal("offer.create", "failed to create offer", err)
	}
	return nil
}

func (r *OfferRepository) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).Preload("Items").First(&offer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, altiserr.NewNotFound("offer.get", "offer not found")
		}
		return nil, altiserr.NewInternal("offer.get", "failed to load offer", err)
	}
	return &offer, nil
}

// MarkAccepted transitions an ACTIVE offer to ACCEPTED; an offer cannot
// revert from ACCEPTED once set. Returns Conflict if the offer is not
// currently ACTIVE, Gone if it is ACTIVE but past expiry.
func (r *OfferRepository) MarkAccepted(ctx context.Context, id string) error {
	offer, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !offer.IsActive(time.Now()) {
		if offer.Status == models.OfferActive {
			return altiserr.NewGone("offer.accept", "offer has expired")
		}
		return altiserr.NewConflict("offer.accept", "offer is not active")
	}
	res := r.db.WithContext(ctx).Model(&models.Offer{}).
		Where("id = ? AND status = ?", id, models.OfferActive).
		Update("status", models.OfferAccepted)
	if res.Error != nil {
		return altiserr.NewInternal("offer.accept", "failed to mark offer accepted", res.Error)
	}
	if res.RowsAffected == 0 {
		return altiserr.NewConflict("offer.accept", "offer was modified concurrently")
	}
	return nil
}

// Cancel transitions an ACTIVE offer to CANCELLED.
func (r *OfferRepository) Cancel(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Offer{}).
		Where("id = ? AND status = ?", id, models.OfferActive).
		Update("status", models.OfferCancelled)
	if res.Error != nil {
		return altiserr.NewInternal("offer.cancel", "failed to cancel offer", res.Error)
	}
	if res.RowsAffected == 0 {
		return altiserr.NewConflict("offer.cancel", "offer is not active")
	}
	return nil
}

// ExpireStaleOffers marks ACTIVE offers whose ExpiresAt has passed as
// EXPIRED.
func (r *OfferRepository) ExpireStaleOffers(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Offer{}).
		Where("status = ? AND expires_at <= NOW()", models.OfferActive).
		Update("status", models.OfferExpired)
	if res.Error != nil {
		return 0, altiserr.NewInternal("offer.expire_sweep", "failed to expire offers", res.Error)
	}
	return res.RowsAffected, nil
}
