package seeders

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Seeder struct {
	Name string
	Run  func(ctx context.Context, db *gorm.DB) error
}

var symbolicSizes = []string{"XS", "S", "M", "L", "XL", "XXL", "3XL", "4XL"}

var seedColors = []models.Color{
	{Name: "Black", Code: "#000000"},
	{Name: "White", Code: "#ffffff"},
	{Name: "Red", Code: "#ff0000"},
	{Name: "Navy", Code: "#000080"},
}

func SeedersRegister() []Seeder {
	return []Seeder{
		{Name: "sizes", Run: seedSizes},
		{Name: "colors", Run: seedColorRows},
		{Name: "demo store", Run: seedDemoStore},
	}
}

// DBSeed runs every seeder. Seeders only add rows that are missing, so
// running it twice is harmless.
func DBSeed(ctx context.Context, db *gorm.DB) error {
	for _, seeder := range SeedersRegister() {
		if err := seeder.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", seeder.Name, err)
		}
		log.Printf("DBSeed: %s done", seeder.Name)
	}
	return nil
}

func seedSizes(ctx context.Context, db *gorm.DB) error {
	var sizes []models.Size
	for i, name := range symbolicSizes {
		sizes = append(sizes, models.Size{Name: name, Kind: models.SizeKindSymbolic, SortOrder: i + 1})
	}
	for n := 36; n <= 46; n += 2 {
		sizes = append(sizes, models.Size{Name: strconv.Itoa(n), Kind: models.SizeKindNumeric, SortOrder: n})
	}

	for _, size := range sizes {
		size := size
		err := db.WithContext(ctx).
			Where(models.Size{Name: size.Name, Kind: size.Kind}).
			FirstOrCreate(&size).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func seedColorRows(ctx context.Context, db *gorm.DB) error {
	for _, color := range seedColors {
		color := color
		if err := db.WithContext(ctx).Where(models.Color{Name: color.Name}).FirstOrCreate(&color).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedDemoStore creates one store with a t-shirt and lets the variant
// matrix fill in every color and symbolic size.
func seedDemoStore(ctx context.Context, db *gorm.DB) error {
	store := models.Store{Name: "Demo Store", IsActive: true}
	if err := db.WithContext(ctx).Where(models.Store{Name: store.Name}).FirstOrCreate(&store).Error; err != nil {
		return err
	}

	product := models.Product{
		StoreID:   store.ID,
		Name:      "Basic T-Shirt",
		BasePrice: decimal.NewFromInt(15000),
		SizeType:  models.SizeTypeSymbolic,
		IsActive:  true,
	}
	err := db.WithContext(ctx).
		Where(models.Product{StoreID: store.ID, Name: product.Name}).
		FirstOrCreate(&product).Error
	if err != nil {
		return err
	}

	attrRepo := repositories.NewAttributeRepository(db)
	colors, err := attrRepo.ListColors(ctx)
	if err != nil {
		return err
	}
	sizes, err := attrRepo.ListSizes(ctx, models.SizeKindSymbolic)
	if err != nil {
		return err
	}

	in := services.GenerateInput{ProductID: product.ID, DefaultQty: 10, Enabled: true}
	for _, c := range colors {
		in.ColorIDs = append(in.ColorIDs, c.ID)
	}
	for _, s := range sizes {
		in.SizeIDs = append(in.SizeIDs, s.ID)
	}

	matrix := services.NewVariantMatrixService(db,
		repositories.NewProductRepository(db),
		attrRepo,
		repositories.NewVariantRepository(db),
		repositories.NewOrderItemRepository(db),
	)
	result, err := matrix.Generate(ctx, in)
	if err != nil {
		return err
	}
	log.Printf("seedDemoStore: product %s has %d new variants, %d existing", product.ID, len(result.Created), result.Skipped)
	return nil
}
