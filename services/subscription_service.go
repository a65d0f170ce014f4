package services

import (
	"context"
	"errors"
	"time"

	"club-management-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// subscriptionTermYears is the default window for auto-created subscriptions.
const subscriptionTermYears = 1

// SubscriptionService reconciles member-status changes into subscription
// state. A member has at most one current subscription: the most recently
// created row. Earlier rows are history and never rewritten.
type SubscriptionService struct {
	DB *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{DB: db}
}

// SetStatus creates the member's first subscription (1-year window, default
// tier) or updates only the status on the current one.
func (s *SubscriptionService) SetStatus(ctx context.Context, userID, status string) (*models.Subscription, error) {
	if !subscriptionStatuses[status] {
		return nil, validationErr("status", "must be one of active, inactive, pending")
	}

	var sub models.Subscription
	err := withRetry(ctx, s.DB, func(tx *gorm.DB) error {
		var current models.Subscription
		err := lockForUpdate(tx).
			Where("user_id = ?", userID).
			Order("created_at DESC, id DESC").
			First(&current).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := time.Now()
			sub = models.Subscription{
				ID:        uuid.NewString(),
				UserID:    userID,
				Status:    status,
				Type:      models.SubscriptionTypeStandard,
				StartDate: now,
				EndDate:   now.AddDate(subscriptionTermYears, 0, 0),
			}
			return tx.Create(&sub).Error
		case err != nil:
			return err
		default:
			// Dates and tier are left untouched, only the status moves.
			if err := tx.Model(&current).Update("status", status).Error; err != nil {
				return err
			}
			current.Status = status
			sub = current
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Current returns the most recently created subscription, or nil when the
// member has none.
func (s *SubscriptionService) Current(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// History returns all subscription rows for a member, newest first.
func (s *SubscriptionService) History(ctx context.Context, userID string) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// ExpireOverdue flips active subscriptions past their end date to inactive.
// Called by the scheduler; returns the number of rows changed.
func (s *SubscriptionService) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := s.DB.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("status = ? AND end_date <= ?", models.SubscriptionStatusActive, now).
		Update("status", models.SubscriptionStatusInactive)
	return result.RowsAffected, result.Error
}
