package go_refrank

import (
	db2 "github.com/refrank/go-refrank/internal/db"
	"github.com/refrank/go-refrank/internal/serviceimpl"
	"github.com/refrank/go-refrank/links"
	"github.com/refrank/go-refrank/qr"
	"github.com/refrank/go-refrank/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SignupService bundles the referral-code and signup-link services the
// portal layers consume. It owns no state beyond the injected handles.
type SignupService struct {
	ReferralCodes service.ReferralCodeService
	Referrals     service.ReferralService
	Ranks         service.RankService
}

// NewSignupService migrates the schema and wires the services. The links
// builder supplies the public base URL embedded in persisted signup
// links; a nil logger disables logging.
func NewSignupService(db *gorm.DB, builder *links.Builder, logger *zap.Logger) (*SignupService, error) {
	if err := db2.Migrate(db); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	encoder := qr.NewEncoder()
	return &SignupService{
		ReferralCodes: serviceimpl.NewReferralCodeService(db, builder, logger),
		Referrals:     serviceimpl.NewReferralService(db, logger),
		Ranks:         serviceimpl.NewRankService(db, builder, encoder, logger),
	}, nil
}
