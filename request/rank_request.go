package request

import "gorm.io/gorm"

type CreateRankRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Benefits    *string `json:"benefits"`
}

type UpdateRankRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Benefits    *string `json:"benefits"`
}

// BusinessRef identifies one business in bulk provisioning calls.
type BusinessRef struct {
	BusinessID            string `json:"businessID" binding:"required"`
	BusinessReferenceCode string `json:"businessReferenceCode" binding:"required"`
}

type AssignCustomerRequest struct {
	UserReferenceID       string `json:"userReferenceID" binding:"required"`
	Email                 string `json:"email"`
	BusinessID            string `json:"businessID" binding:"required"`
	BusinessReferenceCode string `json:"businessReferenceCode" binding:"required"`
	RankID                uint   `json:"rankID" binding:"required"`
	RankName              string `json:"rankName" binding:"required"`
}

type GetRanksRequest struct {
	ID                    *uint                `form:"id"`
	BusinessID            *string              `form:"businessID"`
	BusinessReferenceCode *string              `form:"businessReferenceCode"`
	Name                  *string              `form:"name"`
	IsActive              *bool                `form:"isActive"`
	PaginationConditions  PaginationConditions `form:"paginationConditions"`
}

func ApplyGetRanksRequest(req GetRanksRequest, query *gorm.DB) *gorm.DB {
	if req.ID != nil {
		query = query.Where("signup_customer_ranks.id = ?", *req.ID)
	}
	if req.BusinessID != nil {
		query = query.Where("signup_customer_ranks.business_id = ?", *req.BusinessID)
	}
	if req.BusinessReferenceCode != nil {
		query = query.Where("signup_customer_ranks.business_reference_code = ?", *req.BusinessReferenceCode)
	}
	if req.Name != nil {
		query = query.Where("signup_customer_ranks.name = ?", *req.Name)
	}
	if req.IsActive != nil {
		query = query.Where("signup_customer_ranks.is_active = ?", *req.IsActive)
	}
	return query
}

type GetCustomersRequest struct {
	ID                   *uint                `form:"id"`
	ReferenceID          *string              `form:"referenceID"`
	BusinessID           *string              `form:"businessID"`
	RankID               *uint                `form:"rankID"`
	IsPublicCustomer     *bool                `form:"isPublicCustomer"`
	PaginationConditions PaginationConditions `form:"paginationConditions"`
}

func ApplyGetCustomersRequest(req GetCustomersRequest, query *gorm.DB) *gorm.DB {
	if req.ID != nil {
		query = query.Where("signup_customers.id = ?", *req.ID)
	}
	if req.ReferenceID != nil {
		query = query.Where("signup_customers.reference_id = ?", *req.ReferenceID)
	}
	if req.BusinessID != nil {
		query = query.Where("signup_customers.business_id = ?", *req.BusinessID)
	}
	if req.RankID != nil {
		query = query.Where("signup_customers.rank_id = ?", *req.RankID)
	}
	if req.IsPublicCustomer != nil {
		query = query.Where("signup_customers.is_public_customer = ?", *req.IsPublicCustomer)
	}
	return query
}
