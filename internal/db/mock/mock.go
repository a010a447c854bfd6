package mock

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"qcs/internal/db"
	applog "qcs/internal/log"
	"qcs/models"
)

// Seeded login credentials.
const (
	UserEmail    = "qa@qcs.local"
	UserPassword = "quality"
)

var sequence atomic.Int64

// New returns an in-memory sqlite database seeded with representative QC data.
func New(ctx context.Context) (*gorm.DB, error) {
	database, err := Open(ctx)
	if err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

// Open returns an empty, migrated in-memory database private to the caller.
func Open(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	dsn := db.SQLiteDSN(fmt.Sprintf("file:qcs-mock-%d?mode=memory&cache=shared", sequence.Add(1)))
	cfg := db.GormConfig(logger.Silent)
	database, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	// A shared in-memory database must keep one connection open and
	// serializes writers anyway.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}
	return database, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	user, err := models.NewUser(UserEmail, "Quality Lab", UserPassword)
	if err != nil {
		return err
	}

	return database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		coatings := models.Supplier{Name: "Nordic Coatings", Country: "Sweden", City: "Gothenburg"}
		resins := models.Supplier{Name: "Adriatic Resins", Country: "Croatia", City: "Rijeka"}
		for _, supplier := range []*models.Supplier{&coatings, &resins} {
			if err := tx.Create(supplier).Error; err != nil {
				return err
			}
		}

		tote := models.Package{PackageType: models.PackageTote, UOM: models.UnitKilogram, Size: 1000}
		drum := models.Package{PackageType: models.PackageDrum, UOM: models.UnitLiter, Size: 200}
		for _, pkg := range []*models.Package{&tote, &drum} {
			if err := tx.Create(pkg).Error; err != nil {
				return err
			}
		}

		baseCoat := models.Product{
			ProductID:   stringPtr("BC-123"),
			Code:        "BC123",
			Name:        "some base coat 123",
			Formula:     models.FormulaWaterborne,
			ProductType: models.ProductBaseCoat,
			SupplierID:  coatings.ID,
			PackageID:   &tote.ID,
		}
		clearCoat := models.Product{
			ProductID:   stringPtr("CC-900"),
			Code:        "CC900",
			Name:        "high gloss clear coat",
			Formula:     models.FormulaSolventborne,
			ProductType: models.ProductClearCoat,
			SupplierID:  coatings.ID,
			PackageID:   &drum.ID,
		}
		thinner := models.Product{
			Code:        "TH10",
			Name:        "universal thinner",
			Formula:     models.FormulaSolventborne,
			ProductType: models.ProductThinner,
			SupplierID:  resins.ID,
		}
		for _, product := range []*models.Product{&baseCoat, &clearCoat, &thinner} {
			if err := tx.Create(product).Error; err != nil {
				return err
			}
		}

		made := time.Date(2022, time.May, 31, 0, 0, 0, 0, time.UTC)
		bx123 := models.Batch{
			ProductID: baseCoat.ID,
			Number:    "bx123",
			Size:      3500,
			MDate:     models.NewDate(made),
			ExpDate:   models.NewDate(made.AddDate(0, 3, 0)),
		}
		cc77 := models.Batch{
			ProductID: clearCoat.ID,
			Number:    "cc77",
			Size:      800,
			MDate:     models.NewDate(made.AddDate(0, 1, 0)),
			ExpDate:   models.NewDate(made.AddDate(1, 1, 0)),
		}
		for _, batch := range []*models.Batch{&bx123, &cc77} {
			if err := tx.Create(batch).Error; err != nil {
				return err
			}
		}

		readings := []models.ColorData{
			{
				BatchID:  bx123.ID,
				Category: models.ColorCategorySheet,
				L25:      dec("45.12"), L45: dec("38.40"), L75: dec("31.07"),
				A25: dec("-1.25"), A45: dec("-1.10"), A75: dec("-0.98"),
				B25: dec("2.31"), B45: dec("2.05"), B75: dec("1.88"),
				DE25: dec("0.35"), DE45: dec("0.28"), DE75: dec("0.41"),
				Comment: "Supplier color sheet",
			},
			{
				BatchID:  bx123.ID,
				Category: models.ColorCategoryQualityCheck,
				L25:      dec("45.30"), L45: dec("38.52"), L75: dec("31.00"),
				A25: dec("-1.20"), A45: dec("-1.05"), A75: dec("-0.91"),
				B25: dec("2.40"), B45: dec("2.11"), B75: dec("1.95"),
				DE25: dec("0.52"), DE45: dec("0.47"), DE75: dec("0.60"),
				Comment: "Panel sprayed on line 2",
			},
		}
		return tx.Create(&readings).Error
	})
}

func stringPtr(v string) *string { return &v }

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }
