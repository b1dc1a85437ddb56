package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/refrank/go-refrank/links"
	"github.com/refrank/go-refrank/models"
	"github.com/refrank/go-refrank/request"
	"github.com/refrank/go-refrank/service"
	"github.com/refrank/go-refrank/utils"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// codeAttempts bounds the generate-and-check loop. Exhausting it surfaces
// service.ErrCodeGenerationExhausted to the caller.
const codeAttempts = 10

type referralCodeService struct {
	DB     *gorm.DB
	Links  *links.Builder
	Logger *zap.Logger
}

var _ service.ReferralCodeService = &referralCodeService{}

func NewReferralCodeService(db *gorm.DB, builder *links.Builder, logger *zap.Logger) service.ReferralCodeService {
	return &referralCodeService{DB: db, Links: builder, Logger: logger}
}

func (s *referralCodeService) CreateOrGetReferralCode(req request.CreateReferralCodeRequest) (*models.ReferralCode, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("userID cannot be empty")
	}

	// Find-or-create: a user keeps the first code ever issued to them.
	// Ordering by id means concurrent first-time requests that both slip
	// past this check still converge on the earliest row on every later
	// call; a conditional write at the store layer would close the race
	// entirely.
	var existing models.ReferralCode
	err := s.DB.Where("owner_user_id = ?", req.UserID).Order("id ASC").First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up referral code for user %s: %w", req.UserID, err)
	}

	code, err := s.generateUniqueCode(req.DisplayName)
	if err != nil {
		return nil, err
	}

	referralCode := &models.ReferralCode{
		OwnerUserID:  req.UserID,
		OwnerEmail:   req.Email,
		BusinessID:   req.BusinessID,
		BusinessName: req.BusinessName,
		Code:         code,
		IsActive:     true,
	}
	if err := s.DB.Create(referralCode).Error; err != nil {
		return nil, fmt.Errorf("failed to create referral code: %w", err)
	}
	return referralCode, nil
}

// generateUniqueCode draws candidate codes until one is unused among
// active codes. Only collisions consume the retry budget; a store failure
// aborts immediately.
func (s *referralCodeService) generateUniqueCode(displayName string) (string, error) {
	var code string
	backoff := retry.WithMaxRetries(codeAttempts-1, retry.NewConstant(time.Millisecond))
	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		candidate := utils.GenerateCode(displayName)
		var count int64
		if err := s.DB.Model(&models.ReferralCode{}).
			Where("code = ? AND is_active = ?", candidate, true).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if count > 0 {
			return retry.RetryableError(service.ErrCodeGenerationExhausted)
		}
		code = candidate
		return nil
	})
	if err != nil {
		if errors.Is(err, service.ErrCodeGenerationExhausted) {
			return "", fmt.Errorf("no unused code found in %d attempts: %w", codeAttempts, service.ErrCodeGenerationExhausted)
		}
		return "", err
	}
	return code, nil
}

func (s *referralCodeService) GetReferralCodeByCode(code string) (*models.ReferralCode, bool, error) {
	var referralCode models.ReferralCode
	err := s.DB.Where("code = ? AND is_active = ?", code, true).Order("id ASC").First(&referralCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve referral code %s: %w", code, err)
	}
	return &referralCode, true, nil
}

func (s *referralCodeService) GetReferralCodes(req request.GetReferralCodesRequest) ([]models.ReferralCode, int64, error) {
	var codes []models.ReferralCode
	var count int64

	query := s.DB.Model(&models.ReferralCode{})
	query = request.ApplyGetReferralCodesRequest(req, query)

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count referral codes: %w", err)
	}

	query = request.ApplyPaginationConditions(query, req.PaginationConditions)

	if err := query.Find(&codes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch referral codes: %w", err)
	}

	return codes, count, nil
}

func (s *referralCodeService) ReferralLink(code string) string {
	return s.Links.ReferralLink(code)
}
