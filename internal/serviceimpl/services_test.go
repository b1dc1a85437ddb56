package serviceimpl_test

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	go_refrank "github.com/refrank/go-refrank"
	"github.com/refrank/go-refrank/links"
	"github.com/refrank/go-refrank/models"
	"github.com/refrank/go-refrank/request"
	"github.com/refrank/go-refrank/service"
	"github.com/refrank/go-refrank/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testBaseURL = "https://app.example.com"

var (
	db            *gorm.DB
	signupService *go_refrank.SignupService
)

func TestMain(m *testing.M) {
	var err error
	db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to initialize test database")
	}
	// A single connection keeps every conn on the same in-memory database
	// and serializes the fan-out tests.
	sqlDB, err := db.DB()
	if err != nil {
		panic("failed to access test database handle")
	}
	sqlDB.SetMaxOpenConns(1)

	signupService, err = go_refrank.NewSignupService(db, links.New(testBaseURL), zap.NewNop())
	if err != nil {
		panic("failed to initialize signup service")
	}

	m.Run()
}

func createRank(t *testing.T, businessID, businessRef string, req request.CreateRankRequest) *models.CustomerRank {
	rank, err := signupService.Ranks.CreateCustomerRank(businessID, businessRef, req)
	assert.NoError(t, err, "failed to create customer rank")
	assert.NotNil(t, rank)
	assert.Equal(t, businessID, rank.BusinessID)
	assert.Equal(t, businessRef, rank.BusinessReferenceCode)
	assert.Equal(t, req.Name, rank.Name)
	assert.True(t, rank.IsActive)
	assert.Equal(t, links.New(testBaseURL).SignupLink(businessRef, req.Name), rank.SignupLink)
	assert.Contains(t, rank.QRCodeImage, "data:image/png;base64,")
	return rank
}

func recordReferral(t *testing.T, req request.RecordReferralRequest) *models.Referral {
	referral, err := signupService.Referrals.RecordReferral(req)
	assert.NoError(t, err, "failed to record referral")
	assert.NotNil(t, referral)
	assert.Equal(t, models.ReferralStatusCompleted, referral.Status)
	assert.NotNil(t, referral.CompletedAt)
	return referral
}

func TestCreateOrGetReferralCode(t *testing.T) {
	code, err := signupService.ReferralCodes.CreateOrGetReferralCode(request.CreateReferralCodeRequest{
		UserID:       "user-jane-1",
		Email:        "jane@example.com",
		DisplayName:  "Jane Doe",
		BusinessID:   "biz-1",
		BusinessName: "Acme Cafe",
	})
	require.NoError(t, err)
	require.NotNil(t, code)

	assert.Regexp(t, regexp.MustCompile(`^JANE[0-9]{3}$`), code.Code)
	assert.Len(t, code.Code, 7)
	assert.True(t, code.IsActive)

	// Second call is idempotent: same code, no new row.
	again, err := signupService.ReferralCodes.CreateOrGetReferralCode(request.CreateReferralCodeRequest{
		UserID:      "user-jane-1",
		DisplayName: "Jane Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, code.ID, again.ID)
	assert.Equal(t, code.Code, again.Code)

	var count int64
	err = db.Model(&models.ReferralCode{}).Where("owner_user_id = ?", "user-jane-1").Count(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreateOrGetReferralCodeRequiresUser(t *testing.T) {
	_, err := signupService.ReferralCodes.CreateOrGetReferralCode(request.CreateReferralCodeRequest{})
	assert.Error(t, err)
}

func TestReferralCodeGenerationExhausted(t *testing.T) {
	// Occupy every possible suffix for the "ZEDX" prefix so each of the
	// ten attempts collides.
	taken := make([]models.ReferralCode, 0, 900)
	for n := 100; n <= 999; n++ {
		taken = append(taken, models.ReferralCode{
			OwnerUserID: fmt.Sprintf("squatter-%d", n),
			Code:        fmt.Sprintf("ZEDX%d", n),
			IsActive:    true,
		})
	}
	require.NoError(t, db.CreateInBatches(&taken, 50).Error)

	_, err := signupService.ReferralCodes.CreateOrGetReferralCode(request.CreateReferralCodeRequest{
		UserID:      "user-zed-1",
		DisplayName: "Zed",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrCodeGenerationExhausted))

	// Nothing was persisted for the user.
	var count int64
	require.NoError(t, db.Model(&models.ReferralCode{}).Where("owner_user_id = ?", "user-zed-1").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGetReferralCodeByCode(t *testing.T) {
	created, err := signupService.ReferralCodes.CreateOrGetReferralCode(request.CreateReferralCodeRequest{
		UserID:      "user-mark-1",
		DisplayName: "Mark Twain",
	})
	require.NoError(t, err)

	resolved, found, err := signupService.ReferralCodes.GetReferralCodeByCode(created.Code)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "user-mark-1", resolved.OwnerUserID)

	_, found, err = signupService.ReferralCodes.GetReferralCodeByCode("NOPE000")
	require.NoError(t, err)
	assert.False(t, found)

	// Deactivated codes no longer resolve.
	require.NoError(t, db.Model(&models.ReferralCode{}).Where("id = ?", created.ID).Update("is_active", false).Error)
	_, found, err = signupService.ReferralCodes.GetReferralCodeByCode(created.Code)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReferralLink(t *testing.T) {
	link := signupService.ReferralCodes.ReferralLink("JANE123")
	assert.Equal(t, testBaseURL+"/signup?ref=JANE123", link)
}

func TestGetReferralCodesFilter(t *testing.T) {
	_, err := signupService.ReferralCodes.CreateOrGetReferralCode(request.CreateReferralCodeRequest{
		UserID:      "user-lila-1",
		DisplayName: "Lila",
		BusinessID:  "biz-filter-1",
	})
	require.NoError(t, err)

	codes, count, err := signupService.ReferralCodes.GetReferralCodes(request.GetReferralCodesRequest{
		BusinessID: utils.StringPtr("biz-filter-1"),
		IsActive:   utils.BoolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Len(t, codes, 1)
	assert.Equal(t, "user-lila-1", codes[0].OwnerUserID)
}

func TestRecordReferralAndStats(t *testing.T) {
	referrer := "user-stats-1"

	recordReferral(t, request.RecordReferralRequest{
		ReferrerUserID:    referrer,
		ReferrerEmail:     "stats@example.com",
		ReferredUserID:    "user-ref-a",
		ReferredUserEmail: "a@example.com",
		Code:              "STAT100",
	})
	recordReferral(t, request.RecordReferralRequest{
		ReferrerUserID:    referrer,
		ReferredUserID:    "user-ref-b",
		ReferredUserEmail: "b@example.com",
		Code:              "STAT100",
	})

	// A pending referral created out-of-band by an older flow.
	require.NoError(t, db.Create(&models.Referral{
		ReferrerUserID:    referrer,
		ReferredUserEmail: "c@example.com",
		Code:              "STAT100",
		Status:            models.ReferralStatusPending,
	}).Error)

	stats := signupService.Referrals.GetReferralStats(referrer)
	assert.Equal(t, int64(3), stats.TotalReferrals)
	assert.Equal(t, int64(2), stats.SuccessfulReferrals)
	assert.Equal(t, int64(1), stats.PendingReferrals)
	assert.True(t, stats.TotalPoints.IsZero())

	history := signupService.Referrals.GetReferralHistory(referrer)
	assert.Len(t, history, 3)

	// Counts partition exactly across statuses.
	var failed int64
	for _, r := range history {
		if r.Status == models.ReferralStatusFailed {
			failed++
		}
	}
	assert.Equal(t, stats.TotalReferrals, stats.SuccessfulReferrals+stats.PendingReferrals+failed)

	// Completing by referred email flips the pending record.
	require.NoError(t, signupService.Referrals.CompleteReferralByEmail("c@example.com"))
	stats = signupService.Referrals.GetReferralStats(referrer)
	assert.Equal(t, int64(3), stats.SuccessfulReferrals)
	assert.Equal(t, int64(0), stats.PendingReferrals)

	var completed models.Referral
	require.NoError(t, db.Where("referred_user_email = ?", "c@example.com").First(&completed).Error)
	assert.NotNil(t, completed.CompletedAt)
	assert.WithinDuration(t, time.Now(), *completed.CompletedAt, time.Minute)
}

func TestCompleteReferralByEmailNoop(t *testing.T) {
	assert.NoError(t, signupService.Referrals.CompleteReferralByEmail("nobody@example.com"))
}

func TestGetReferralStatsUnknownUser(t *testing.T) {
	stats := signupService.Referrals.GetReferralStats("user-unknown")
	assert.Equal(t, int64(0), stats.TotalReferrals)
	assert.True(t, stats.TotalPoints.IsZero())
	assert.Empty(t, signupService.Referrals.GetReferralHistory("user-unknown"))
}

func TestGetReferralsFilter(t *testing.T) {
	recordReferral(t, request.RecordReferralRequest{
		ReferrerUserID:    "user-list-1",
		ReferredUserID:    "user-ref-x",
		ReferredUserEmail: "x@example.com",
		BusinessID:        "biz-list-1",
		Code:              "LIST100",
	})

	referrals, count, err := signupService.Referrals.GetReferrals(request.GetReferralsRequest{
		BusinessID: utils.StringPtr("biz-list-1"),
		Status:     utils.StringPtr(models.ReferralStatusCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Len(t, referrals, 1)
	assert.Equal(t, "LIST100", referrals[0].Code)
}

func TestRankLifecycle(t *testing.T) {
	businessID := "biz-life-1"
	businessRef := "BUS-2024-001"

	rank := createRank(t, businessID, businessRef, request.CreateRankRequest{
		Name:        "Gold",
		Description: utils.StringPtr("Top tier"),
	})
	assert.Equal(t, testBaseURL+"/signup?business=BUS-2024-001&rank=Gold", rank.SignupLink)
	originalQR := rank.QRCodeImage

	// Active rank validates by exact (businessReferenceCode, name).
	match, found, err := signupService.Ranks.ValidateSignupLink(businessRef, "Gold")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, rank.ID, match.ID)

	_, found, err = signupService.Ranks.ValidateSignupLink(businessRef, "Silver")
	require.NoError(t, err)
	assert.False(t, found)

	// Rename rebuilds the link and QR from the new name.
	updated, err := signupService.Ranks.UpdateCustomerRank(rank.ID, request.UpdateRankRequest{
		Name: utils.StringPtr("Platinum"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Platinum", updated.Name)
	assert.Equal(t, testBaseURL+"/signup?business=BUS-2024-001&rank=Platinum", updated.SignupLink)
	assert.NotEqual(t, originalQR, updated.QRCodeImage)

	_, found, err = signupService.Ranks.ValidateSignupLink(businessRef, "Gold")
	require.NoError(t, err)
	assert.False(t, found, "old name must no longer validate")

	match, found, err = signupService.Ranks.ValidateSignupLink(businessRef, "Platinum")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, rank.ID, match.ID)

	// Deactivation fails validation without deleting the rank.
	require.NoError(t, signupService.Ranks.ToggleRankStatus(rank.ID, false))
	_, found, err = signupService.Ranks.ValidateSignupLink(businessRef, "Platinum")
	require.NoError(t, err)
	assert.False(t, found)

	_, count, err := signupService.Ranks.GetRanks(request.GetRanksRequest{ID: utils.UintPtr(rank.ID)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "inactive rank still exists")

	require.NoError(t, signupService.Ranks.ToggleRankStatus(rank.ID, true))
	_, found, err = signupService.Ranks.ValidateSignupLink(businessRef, "Platinum")
	require.NoError(t, err)
	assert.True(t, found)

	// Deletion is terminal: the rank no longer resolves at all.
	require.NoError(t, signupService.Ranks.DeleteRank(rank.ID))
	_, found, err = signupService.Ranks.ValidateSignupLink(businessRef, "Platinum")
	require.NoError(t, err)
	assert.False(t, found)

	_, count, err = signupService.Ranks.GetRanks(request.GetRanksRequest{ID: utils.UintPtr(rank.ID)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	assert.Error(t, signupService.Ranks.RegenerateRankQR(rank.ID))
	assert.Error(t, signupService.Ranks.ToggleRankStatus(rank.ID, false))
}

func TestUpdateRankDescriptionKeepsLink(t *testing.T) {
	rank := createRank(t, "biz-desc-1", "BUS-DESC-001", request.CreateRankRequest{Name: "Silver"})

	updated, err := signupService.Ranks.UpdateCustomerRank(rank.ID, request.UpdateRankRequest{
		Description: utils.StringPtr("Mid tier"),
		Benefits:    utils.StringPtr("5% off"),
	})
	require.NoError(t, err)
	assert.Equal(t, rank.SignupLink, updated.SignupLink)
	assert.Equal(t, rank.QRCodeImage, updated.QRCodeImage)
	assert.Equal(t, "Mid tier", *updated.Description)
	assert.Equal(t, "5% off", *updated.Benefits)
}

func TestRegenerateAllBusinessSignupLinks(t *testing.T) {
	businessID := "biz-regen-1"
	businessRef := "BUS-REGEN-001"
	for _, name := range []string{"Bronze", "Silver", "Gold"} {
		createRank(t, businessID, businessRef, request.CreateRankRequest{Name: name})
	}

	// The public domain changes: a service built over the new base URL
	// rewrites every persisted link of the business.
	newBase := "https://portal.example.org"
	moved, err := go_refrank.NewSignupService(db, links.New(newBase), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, moved.Ranks.RegenerateAllBusinessSignupLinks(businessID))

	ranks, count, err := moved.Ranks.GetRanks(request.GetRanksRequest{BusinessID: utils.StringPtr(businessID)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	for _, rank := range ranks {
		assert.Equal(t, links.New(newBase).SignupLink(businessRef, rank.Name), rank.SignupLink)
		assert.Contains(t, rank.QRCodeImage, "data:image/png;base64,")
	}
}

func TestEnsureReferralRankIdempotent(t *testing.T) {
	businessID := "biz-ensure-1"
	businessRef := "BUS-ENSURE-001"

	first, err := signupService.Ranks.EnsureReferralRank(businessID, businessRef)
	require.NoError(t, err)
	assert.Equal(t, models.ReservedReferralRankName, first.Name)

	second, err := signupService.Ranks.EnsureReferralRank(businessID, businessRef)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, count, err := signupService.Ranks.GetRanks(request.GetRanksRequest{
		BusinessID: utils.StringPtr(businessID),
		Name:       utils.StringPtr(models.ReservedReferralRankName),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestProvisionReferralRanks(t *testing.T) {
	businesses := []request.BusinessRef{
		{BusinessID: "biz-prov-1", BusinessReferenceCode: "BUS-PROV-001"},
		{BusinessID: "biz-prov-2", BusinessReferenceCode: "BUS-PROV-002"},
		{BusinessID: "biz-prov-3", BusinessReferenceCode: "BUS-PROV-003"},
	}
	require.NoError(t, signupService.Ranks.ProvisionReferralRanks(businesses))

	for _, biz := range businesses {
		rank, found, err := signupService.Ranks.ValidateSignupLink(biz.BusinessReferenceCode, models.ReservedReferralRankName)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, biz.BusinessID, rank.BusinessID)
	}

	// Re-provisioning creates nothing new.
	require.NoError(t, signupService.Ranks.ProvisionReferralRanks(businesses))
	_, count, err := signupService.Ranks.GetRanks(request.GetRanksRequest{
		BusinessID: utils.StringPtr("biz-prov-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAssignCustomerToBusiness(t *testing.T) {
	rank := createRank(t, "biz-assign-1", "BUS-ASSIGN-001", request.CreateRankRequest{Name: "Gold"})

	req := request.AssignCustomerRequest{
		UserReferenceID:       "user-assign-1",
		Email:                 "assign@example.com",
		BusinessID:            "biz-assign-1",
		BusinessReferenceCode: "BUS-ASSIGN-001",
		RankID:                rank.ID,
		RankName:              rank.Name,
	}
	require.NoError(t, signupService.Ranks.AssignCustomerToBusiness(req))
	// Idempotent: reapplying yields the same state.
	require.NoError(t, signupService.Ranks.AssignCustomerToBusiness(req))

	customers, count, err := signupService.Ranks.GetCustomers(request.GetCustomersRequest{
		ReferenceID: utils.StringPtr("user-assign-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, "biz-assign-1", *customers[0].BusinessID)
	assert.Equal(t, rank.ID, *customers[0].RankID)
	assert.Equal(t, "Gold", *customers[0].RankName)
	assert.False(t, customers[0].IsPublicCustomer)
}
