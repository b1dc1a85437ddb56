package service

import (
	"errors"

	"github.com/refrank/go-refrank/models"
	"github.com/refrank/go-refrank/request"
	"github.com/refrank/go-refrank/response"
)

// ErrCodeGenerationExhausted is returned when the bounded
// generate-and-check loop fails to find an unused referral code. It must
// be surfaced to the user as a failure, not retried further.
var ErrCodeGenerationExhausted = errors.New("referral code generation exhausted")

// ReferralCodeService issues and resolves per-user referral codes.
type ReferralCodeService interface {
	// CreateOrGetReferralCode returns the user's existing code if one
	// exists, otherwise generates a unique one and persists it.
	CreateOrGetReferralCode(req request.CreateReferralCodeRequest) (*models.ReferralCode, error)
	// GetReferralCodeByCode resolves an active code, e.g. from a
	// /signup?ref= parameter. The bool reports whether a match exists;
	// the error is reserved for store failure.
	GetReferralCodeByCode(code string) (*models.ReferralCode, bool, error)
	GetReferralCodes(req request.GetReferralCodesRequest) ([]models.ReferralCode, int64, error)
	// ReferralLink builds the shareable URL embedding the code.
	ReferralLink(code string) string
}

// ReferralService records referral outcomes and aggregates them.
type ReferralService interface {
	// RecordReferral creates a referral already marked completed; it is
	// only invoked after the referred signup has succeeded.
	RecordReferral(req request.RecordReferralRequest) (*models.Referral, error)
	// CompleteReferralByEmail transitions the most recent pending
	// referral for that referred email to completed. No-op when none.
	CompleteReferralByEmail(referredUserEmail string) error
	// GetReferralStats never fails: on store error it logs and returns a
	// zeroed value. UI callers depend on that.
	GetReferralStats(referrerUserID string) response.ReferralStats
	// GetReferralHistory never fails: on store error it logs and returns
	// an empty list.
	GetReferralHistory(referrerUserID string) []models.Referral
	GetReferrals(req request.GetReferralsRequest) ([]models.Referral, int64, error)
}

// RankService manages customer ranks, their signup links and QR images,
// and the customer/business association written at signup.
type RankService interface {
	CreateCustomerRank(businessID, businessReferenceCode string, req request.CreateRankRequest) (*models.CustomerRank, error)
	GetRanks(req request.GetRanksRequest) ([]models.CustomerRank, int64, error)
	// UpdateCustomerRank applies the given fields; a rename rebuilds the
	// signup link and QR image from the new name in the same update.
	UpdateCustomerRank(rankID uint, req request.UpdateRankRequest) (*models.CustomerRank, error)
	// RegenerateRankQR re-derives the rank's link and QR from its current
	// fields, for when the public app domain changes.
	RegenerateRankQR(rankID uint) error
	RegenerateAllBusinessSignupLinks(businessID string) error
	ToggleRankStatus(rankID uint, active bool) error
	DeleteRank(rankID uint) error
	// ValidateSignupLink is the gate a signup flow passes before
	// associating a new account: active rank, exact
	// (businessReferenceCode, name) match. The bool reports whether a
	// match exists; the error is reserved for store failure.
	ValidateSignupLink(businessReferenceCode, rankName string) (*models.CustomerRank, bool, error)
	// EnsureReferralRank finds or creates the reserved "Referral" rank
	// for a business, called when the business is approved.
	EnsureReferralRank(businessID, businessReferenceCode string) (*models.CustomerRank, error)
	ProvisionReferralRanks(businesses []request.BusinessRef) error
	// AssignCustomerToBusiness is idempotent: reapplying the same
	// arguments yields the same state.
	AssignCustomerToBusiness(req request.AssignCustomerRequest) error
	GetCustomers(req request.GetCustomersRequest) ([]models.Customer, int64, error)
}
