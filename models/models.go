package models

import (
	"gorm.io/gorm"
	"time"
)

// Referral status values. Transitions are monotonic: pending may move to
// completed or failed; completed and failed are terminal.
const (
	ReferralStatusPending   = "pending"
	ReferralStatusCompleted = "completed"
	ReferralStatusFailed    = "failed"
)

// ReservedReferralRankName is the rank created automatically for every
// approved business. It is find-or-create, never duplicated.
const ReservedReferralRankName = "Referral"

type BaseModel struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"index" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ReferralCode is the shareable per-user token embedded in referral links.
// A code is issued lazily on first request and never mutated afterwards.
// Uniqueness among active codes is enforced by the service's bounded
// generate-and-check loop, not by a schema constraint.
type ReferralCode struct {
	BaseModel
	OwnerUserID  string `gorm:"size:100;not null;index" json:"ownerUserID"`
	OwnerEmail   string `gorm:"size:100" json:"ownerEmail"`
	BusinessID   string `gorm:"size:100;index" json:"businessID"`
	BusinessName string `gorm:"size:255" json:"businessName"`
	Code         string `gorm:"size:20;not null;index" json:"code"`
	IsActive     bool   `gorm:"default:true;index" json:"isActive"`
}

func (ReferralCode) TableName() string {
	return "signup_referral_codes"
}

// Referral records one referred signup against a referrer's code.
type Referral struct {
	BaseModel
	ReferrerUserID    string     `gorm:"size:100;not null;index" json:"referrerUserID"`
	ReferrerEmail     string     `gorm:"size:100" json:"referrerEmail"`
	ReferredUserID    string     `gorm:"size:100" json:"referredUserID"`
	ReferredUserEmail string     `gorm:"size:100;index" json:"referredUserEmail"`
	BusinessID        string     `gorm:"size:100;index" json:"businessID"`
	BusinessName      string     `gorm:"size:255" json:"businessName"`
	Code              string     `gorm:"size:20;index" json:"code"`
	Status            string     `gorm:"size:50;default:'pending';not null;index" json:"status"`
	CompletedAt       *time.Time `json:"completedAt"`
}

func (Referral) TableName() string {
	return "signup_referrals"
}

// CustomerRank is a named tier a business defines. SignupLink and
// QRCodeImage are always derived together from
// (BusinessReferenceCode, Name) and must never diverge from the current
// name.
type CustomerRank struct {
	BaseModel
	BusinessID            string  `gorm:"size:100;not null;index" json:"businessID"`
	BusinessReferenceCode string  `gorm:"size:100;not null;index" json:"businessReferenceCode"`
	Name                  string  `gorm:"size:255;not null" json:"name"`
	Description           *string `gorm:"type:text" json:"description"`
	Benefits              *string `gorm:"type:text" json:"benefits"`
	SignupLink            string  `gorm:"type:text;not null" json:"signupLink"`
	QRCodeImage           string  `gorm:"type:text;not null" json:"qrCodeImage"` // PNG data URI
	IsActive              bool    `gorm:"default:true;index" json:"isActive"`
}

func (CustomerRank) TableName() string {
	return "signup_customer_ranks"
}

// Customer holds the business association written at signup. ReferenceID
// is the external auth user id; the external users store itself is never
// written by this module.
type Customer struct {
	BaseModel
	ReferenceID           string  `gorm:"size:100;not null;uniqueIndex" json:"referenceID"`
	Email                 string  `gorm:"size:100" json:"email"`
	BusinessID            *string `gorm:"size:100;index" json:"businessID"`
	BusinessReferenceCode *string `gorm:"size:100" json:"businessReferenceCode"`
	RankID                *uint   `gorm:"index" json:"rankID"`
	RankName              *string `gorm:"size:255" json:"rankName"`
	IsPublicCustomer      bool    `gorm:"default:true;index" json:"isPublicCustomer"`
}

func (Customer) TableName() string {
	return "signup_customers"
}
