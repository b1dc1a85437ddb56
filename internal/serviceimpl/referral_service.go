package serviceimpl

import (
	"errors"
	"fmt"
	"time"

	"github.com/refrank/go-refrank/models"
	"github.com/refrank/go-refrank/request"
	"github.com/refrank/go-refrank/response"
	"github.com/refrank/go-refrank/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type referralService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

var _ service.ReferralService = &referralService{}

func NewReferralService(db *gorm.DB, logger *zap.Logger) service.ReferralService {
	return &referralService{DB: db, Logger: logger}
}

func (s *referralService) RecordReferral(req request.RecordReferralRequest) (*models.Referral, error) {
	if req.ReferrerUserID == "" {
		return nil, fmt.Errorf("referrerUserID cannot be empty")
	}

	// Recording only happens after the referred signup has succeeded, so
	// the referral is born completed.
	now := time.Now()
	referral := &models.Referral{
		ReferrerUserID:    req.ReferrerUserID,
		ReferrerEmail:     req.ReferrerEmail,
		ReferredUserID:    req.ReferredUserID,
		ReferredUserEmail: req.ReferredUserEmail,
		BusinessID:        req.BusinessID,
		BusinessName:      req.BusinessName,
		Code:              req.Code,
		Status:            models.ReferralStatusCompleted,
		CompletedAt:       &now,
	}
	if err := s.DB.Create(referral).Error; err != nil {
		return nil, fmt.Errorf("failed to record referral: %w", err)
	}
	return referral, nil
}

func (s *referralService) CompleteReferralByEmail(referredUserEmail string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var referral models.Referral
		err := tx.Where("referred_user_email = ? AND status = ?", referredUserEmail, models.ReferralStatusPending).
			Order("id DESC").
			First(&referral).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Nothing pending for that email is not an error.
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up pending referral for %s: %w", referredUserEmail, err)
		}

		now := time.Now()
		referral.Status = models.ReferralStatusCompleted
		referral.CompletedAt = &now
		if err := tx.Save(&referral).Error; err != nil {
			return fmt.Errorf("failed to complete referral %d: %w", referral.ID, err)
		}
		return nil
	})
}

// GetReferralStats fails soft: the dashboard widget it feeds must never
// error out, so a store failure logs and returns zeroes.
func (s *referralService) GetReferralStats(referrerUserID string) response.ReferralStats {
	stats := response.ReferralStats{TotalPoints: decimal.Zero}

	var referrals []models.Referral
	if err := s.DB.Where("referrer_user_id = ?", referrerUserID).Find(&referrals).Error; err != nil {
		s.Logger.Warn("referral stats query failed, returning zeroes",
			zap.String("referrerUserID", referrerUserID), zap.Error(err))
		return stats
	}

	for _, r := range referrals {
		stats.TotalReferrals++
		switch r.Status {
		case models.ReferralStatusCompleted:
			stats.SuccessfulReferrals++
		case models.ReferralStatusPending:
			stats.PendingReferrals++
		}
	}
	return stats
}

// GetReferralHistory fails soft for the same reason as GetReferralStats.
func (s *referralService) GetReferralHistory(referrerUserID string) []models.Referral {
	var referrals []models.Referral
	if err := s.DB.Where("referrer_user_id = ?", referrerUserID).Find(&referrals).Error; err != nil {
		s.Logger.Warn("referral history query failed, returning empty list",
			zap.String("referrerUserID", referrerUserID), zap.Error(err))
		return []models.Referral{}
	}
	return referrals
}

func (s *referralService) GetReferrals(req request.GetReferralsRequest) ([]models.Referral, int64, error) {
	var referrals []models.Referral
	var count int64

	query := s.DB.Model(&models.Referral{})
	query = request.ApplyGetReferralsRequest(req, query)

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count referrals: %w", err)
	}

	query = request.ApplyPaginationConditions(query, req.PaginationConditions)

	if err := query.Find(&referrals).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch referrals: %w", err)
	}

	return referrals, count, nil
}
