package migration

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/refrank/go-refrank/models"
	"gorm.io/gorm"
)

var Initialise = &gormigrate.Migration{
	ID: "202601121030-rl-609317",
	Migrate: func(db *gorm.DB) error {
		return db.AutoMigrate(&models.ReferralCode{}, &models.Referral{}, &models.CustomerRank{}, &models.Customer{})
	},
	Rollback: func(db *gorm.DB) error {
		return db.Migrator().DropTable(&models.ReferralCode{}, &models.Referral{}, &models.CustomerRank{}, &models.Customer{})
	},
}
