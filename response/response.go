package response

import (
	"github.com/shopspring/decimal"
)

// ReferralStats summarizes a referrer's outcomes.
//
// TotalPoints is a placeholder: no scoring rule is defined anywhere yet,
// so it is always decimal.Zero.
type ReferralStats struct {
	TotalReferrals      int64           `json:"totalReferrals"`
	SuccessfulReferrals int64           `json:"successfulReferrals"`
	PendingReferrals    int64           `json:"pendingReferrals"`
	TotalPoints         decimal.Decimal `json:"totalPoints"`
}
