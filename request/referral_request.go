package request

import "gorm.io/gorm"

type CreateReferralCodeRequest struct {
	UserID       string `json:"userID" binding:"required"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	BusinessID   string `json:"businessID"`
	BusinessName string `json:"businessName"`
}

type RecordReferralRequest struct {
	ReferrerUserID    string `json:"referrerUserID" binding:"required"`
	ReferrerEmail     string `json:"referrerEmail"`
	ReferredUserID    string `json:"referredUserID" binding:"required"`
	ReferredUserEmail string `json:"referredUserEmail"`
	BusinessID        string `json:"businessID"`
	BusinessName      string `json:"businessName"`
	Code              string `json:"code"`
}

type GetReferralCodesRequest struct {
	ID                   *uint                `form:"id"`
	OwnerUserID          *string              `form:"ownerUserID"`
	OwnerEmail           *string              `form:"ownerEmail"`
	BusinessID           *string              `form:"businessID"`
	Code                 *string              `form:"code"`
	IsActive             *bool                `form:"isActive"`
	PaginationConditions PaginationConditions `form:"paginationConditions"`
}

func ApplyGetReferralCodesRequest(req GetReferralCodesRequest, query *gorm.DB) *gorm.DB {
	if req.ID != nil {
		query = query.Where("signup_referral_codes.id = ?", *req.ID)
	}
	if req.OwnerUserID != nil {
		query = query.Where("signup_referral_codes.owner_user_id = ?", *req.OwnerUserID)
	}
	if req.OwnerEmail != nil {
		query = query.Where("signup_referral_codes.owner_email = ?", *req.OwnerEmail)
	}
	if req.BusinessID != nil {
		query = query.Where("signup_referral_codes.business_id = ?", *req.BusinessID)
	}
	if req.Code != nil {
		query = query.Where("signup_referral_codes.code = ?", *req.Code)
	}
	if req.IsActive != nil {
		query = query.Where("signup_referral_codes.is_active = ?", *req.IsActive)
	}
	return query
}

type GetReferralsRequest struct {
	ID                   *uint                `form:"id"`
	ReferrerUserID       *string              `form:"referrerUserID"`
	ReferredUserEmail    *string              `form:"referredUserEmail"`
	BusinessID           *string              `form:"businessID"`
	Code                 *string              `form:"code"`
	Status               *string              `form:"status"`
	PaginationConditions PaginationConditions `form:"paginationConditions"`
}

func ApplyGetReferralsRequest(req GetReferralsRequest, query *gorm.DB) *gorm.DB {
	if req.ID != nil {
		query = query.Where("signup_referrals.id = ?", *req.ID)
	}
	if req.ReferrerUserID != nil {
		query = query.Where("signup_referrals.referrer_user_id = ?", *req.ReferrerUserID)
	}
	if req.ReferredUserEmail != nil {
		query = query.Where("signup_referrals.referred_user_email = ?", *req.ReferredUserEmail)
	}
	if req.BusinessID != nil {
		query = query.Where("signup_referrals.business_id = ?", *req.BusinessID)
	}
	if req.Code != nil {
		query = query.Where("signup_referrals.code = ?", *req.Code)
	}
	if req.Status != nil {
		query = query.Where("signup_referrals.status = ?", *req.Status)
	}
	return query
}
