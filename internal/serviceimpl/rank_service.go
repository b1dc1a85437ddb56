package serviceimpl

import (
	"errors"
	"fmt"

	"github.com/refrank/go-refrank/links"
	"github.com/refrank/go-refrank/models"
	"github.com/refrank/go-refrank/qr"
	"github.com/refrank/go-refrank/request"
	"github.com/refrank/go-refrank/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// regenerateWorkers caps concurrent rank rewrites during bulk
// regeneration and provisioning.
const regenerateWorkers = 4

type rankService struct {
	DB     *gorm.DB
	Links  *links.Builder
	QR     *qr.Encoder
	Logger *zap.Logger
}

var _ service.RankService = &rankService{}

func NewRankService(db *gorm.DB, builder *links.Builder, encoder *qr.Encoder, logger *zap.Logger) service.RankService {
	return &rankService{DB: db, Links: builder, QR: encoder, Logger: logger}
}

// deriveLinkAndQR rebuilds the signup link and QR image for a rank name.
// The two are always written together so they cannot diverge.
func (s *rankService) deriveLinkAndQR(businessReferenceCode, rankName string) (string, string, error) {
	link := s.Links.SignupLink(businessReferenceCode, rankName)
	image, err := s.QR.DataURI(link)
	if err != nil {
		return "", "", fmt.Errorf("failed to build QR for rank %q: %w", rankName, err)
	}
	return link, image, nil
}

func (s *rankService) CreateCustomerRank(businessID, businessReferenceCode string, req request.CreateRankRequest) (*models.CustomerRank, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("rank name cannot be empty")
	}

	link, image, err := s.deriveLinkAndQR(businessReferenceCode, req.Name)
	if err != nil {
		return nil, err
	}

	rank := &models.CustomerRank{
		BusinessID:            businessID,
		BusinessReferenceCode: businessReferenceCode,
		Name:                  req.Name,
		Description:           req.Description,
		Benefits:              req.Benefits,
		SignupLink:            link,
		QRCodeImage:           image,
		IsActive:              true,
	}
	if err := s.DB.Create(rank).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer rank: %w", err)
	}
	return rank, nil
}

func (s *rankService) GetRanks(req request.GetRanksRequest) ([]models.CustomerRank, int64, error) {
	var ranks []models.CustomerRank
	var count int64

	query := s.DB.Model(&models.CustomerRank{})
	query = request.ApplyGetRanksRequest(req, query)

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customer ranks: %w", err)
	}

	query = request.ApplyPaginationConditions(query, req.PaginationConditions)

	if err := query.Find(&ranks).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customer ranks: %w", err)
	}

	return ranks, count, nil
}

func (s *rankService) UpdateCustomerRank(rankID uint, req request.UpdateRankRequest) (*models.CustomerRank, error) {
	var updated *models.CustomerRank

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var rank models.CustomerRank
		if err := tx.First(&rank, rankID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("customer rank %d not found", rankID)
			}
			return fmt.Errorf("failed to fetch customer rank %d: %w", rankID, err)
		}

		if req.Name != nil && *req.Name != "" {
			// A rename invalidates both the link and the QR image; they
			// are rebuilt from the new name in the same write.
			link, image, err := s.deriveLinkAndQR(rank.BusinessReferenceCode, *req.Name)
			if err != nil {
				return err
			}
			rank.Name = *req.Name
			rank.SignupLink = link
			rank.QRCodeImage = image
		}
		if req.Description != nil {
			rank.Description = req.Description
		}
		if req.Benefits != nil {
			rank.Benefits = req.Benefits
		}

		if err := tx.Save(&rank).Error; err != nil {
			return fmt.Errorf("failed to save customer rank %d: %w", rankID, err)
		}

		updated = &rank
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *rankService) RegenerateRankQR(rankID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var rank models.CustomerRank
		if err := tx.First(&rank, rankID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("customer rank %d not found", rankID)
			}
			return fmt.Errorf("failed to fetch customer rank %d: %w", rankID, err)
		}

		link, image, err := s.deriveLinkAndQR(rank.BusinessReferenceCode, rank.Name)
		if err != nil {
			return err
		}
		rank.SignupLink = link
		rank.QRCodeImage = image

		if err := tx.Save(&rank).Error; err != nil {
			return fmt.Errorf("failed to save customer rank %d: %w", rankID, err)
		}
		return nil
	})
}

// RegenerateAllBusinessSignupLinks rewrites every rank of a business,
// used when the public app domain changes. The fan-out is capped; each
// rank is an independent read-then-write.
func (s *rankService) RegenerateAllBusinessSignupLinks(businessID string) error {
	var rankIDs []uint
	if err := s.DB.Model(&models.CustomerRank{}).
		Where("business_id = ?", businessID).
		Pluck("id", &rankIDs).Error; err != nil {
		return fmt.Errorf("failed to list ranks for business %s: %w", businessID, err)
	}

	var g errgroup.Group
	g.SetLimit(regenerateWorkers)
	for _, id := range rankIDs {
		id := id
		g.Go(func() error {
			return s.RegenerateRankQR(id)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to regenerate signup links for business %s: %w", businessID, err)
	}

	s.Logger.Info("regenerated business signup links",
		zap.String("businessID", businessID), zap.Int("ranks", len(rankIDs)))
	return nil
}

func (s *rankService) ToggleRankStatus(rankID uint, active bool) error {
	result := s.DB.Model(&models.CustomerRank{}).
		Where("id = ?", rankID).
		Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to update status of customer rank %d: %w", rankID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("customer rank %d not found", rankID)
	}
	return nil
}

// DeleteRank soft-deletes, which is terminal: unlike a deactivated rank
// the row no longer resolves anywhere. Customers keeping a reference to
// the deleted rank are the caller's concern.
func (s *rankService) DeleteRank(rankID uint) error {
	result := s.DB.Delete(&models.CustomerRank{}, rankID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete customer rank %d: %w", rankID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("customer rank %d not found", rankID)
	}
	return nil
}

func (s *rankService) ValidateSignupLink(businessReferenceCode, rankName string) (*models.CustomerRank, bool, error) {
	var rank models.CustomerRank
	err := s.DB.Where("business_reference_code = ? AND name = ? AND is_active = ?",
		businessReferenceCode, rankName, true).
		Order("id ASC").
		First(&rank).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to validate signup link for %s/%s: %w", businessReferenceCode, rankName, err)
	}
	return &rank, true, nil
}

// EnsureReferralRank finds or creates the reserved "Referral" rank.
// The find-before-create check carries the same window as the referral
// code path; duplicates are converged on the earliest row at read time.
func (s *rankService) EnsureReferralRank(businessID, businessReferenceCode string) (*models.CustomerRank, error) {
	var rank models.CustomerRank
	err := s.DB.Where("business_id = ? AND name = ?", businessID, models.ReservedReferralRankName).
		Order("id ASC").
		First(&rank).Error
	if err == nil {
		return &rank, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up referral rank for business %s: %w", businessID, err)
	}

	description := "Customers who joined through a referral link"
	return s.CreateCustomerRank(businessID, businessReferenceCode, request.CreateRankRequest{
		Name:        models.ReservedReferralRankName,
		Description: &description,
	})
}

// ProvisionReferralRanks ensures the reserved rank exists for every given
// business, used by admin tooling after bulk approvals.
func (s *rankService) ProvisionReferralRanks(businesses []request.BusinessRef) error {
	var g errgroup.Group
	g.SetLimit(regenerateWorkers)
	for _, biz := range businesses {
		biz := biz
		g.Go(func() error {
			_, err := s.EnsureReferralRank(biz.BusinessID, biz.BusinessReferenceCode)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to provision referral ranks: %w", err)
	}

	s.Logger.Info("provisioned referral ranks", zap.Int("businesses", len(businesses)))
	return nil
}

// AssignCustomerToBusiness upserts the association written at signup.
// Reapplying the same arguments yields the same state.
func (s *rankService) AssignCustomerToBusiness(req request.AssignCustomerRequest) error {
	if req.UserReferenceID == "" {
		return fmt.Errorf("userReferenceID cannot be empty")
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		err := tx.Where("reference_id = ?", req.UserReferenceID).First(&customer).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to fetch customer %s: %w", req.UserReferenceID, err)
		}

		customer.ReferenceID = req.UserReferenceID
		if req.Email != "" {
			customer.Email = req.Email
		}
		customer.BusinessID = &req.BusinessID
		customer.BusinessReferenceCode = &req.BusinessReferenceCode
		customer.RankID = &req.RankID
		customer.RankName = &req.RankName
		customer.IsPublicCustomer = false

		if err := tx.Save(&customer).Error; err != nil {
			return fmt.Errorf("failed to assign customer %s to business %s: %w", req.UserReferenceID, req.BusinessID, err)
		}
		return nil
	})
}

func (s *rankService) GetCustomers(req request.GetCustomersRequest) ([]models.Customer, int64, error) {
	var customers []models.Customer
	var count int64

	query := s.DB.Model(&models.Customer{})
	query = request.ApplyGetCustomersRequest(req, query)

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	query = request.ApplyPaginationConditions(query, req.PaginationConditions)

	if err := query.Find(&customers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}

	return customers, count, nil
}
