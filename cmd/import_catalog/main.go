package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"qcs/internal/config"
	"qcs/internal/db"
	"qcs/models"
)

// Catalog is the YAML fixture layout: shared packages plus suppliers with
// their products.
type Catalog struct {
	Packages  []PackageEntry  `yaml:"packages"`
	Suppliers []SupplierEntry `yaml:"suppliers"`
}

type PackageEntry struct {
	Key  string `yaml:"key"`
	Type string `yaml:"type"`
	UOM  string `yaml:"uom"`
	Size uint   `yaml:"size"`
}

type SupplierEntry struct {
	Name     string         `yaml:"name"`
	Country  string         `yaml:"country"`
	City     string         `yaml:"city"`
	Products []ProductEntry `yaml:"products"`
}

type ProductEntry struct {
	ProductID string `yaml:"product_id"`
	Code      string `yaml:"code"`
	Name      string `yaml:"name"`
	Formula   string `yaml:"formula"`
	Type      string `yaml:"type"`
	Package   string `yaml:"package"`
}

type summary struct {
	Suppliers int
	Packages  int
	Products  int
}

func main() {
	path := "catalog.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	if err := run(path); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("catalog path must not be empty")
	}

	catalog, err := readCatalog(path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	result, err := importCatalog(context.Background(), database, catalog)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Imported %d suppliers, %d packages and %d products from %s\n",
		result.Suppliers, result.Packages, result.Products, filepath.Base(path))
	return nil
}

func readCatalog(path string) (Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return Catalog{}, err
	}
	defer file.Close()

	var catalog Catalog
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&catalog); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}

// importCatalog upserts every entry by its natural key inside one transaction.
func importCatalog(ctx context.Context, database *gorm.DB, catalog Catalog) (summary, error) {
	if database == nil {
		return summary{}, fmt.Errorf("database handle is nil")
	}

	var result summary
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		packages := make(map[string]uint, len(catalog.Packages))
		for idx, entry := range catalog.Packages {
			pkg, err := upsertPackage(tx, entry)
			if err != nil {
				return fmt.Errorf("package %d (%s): %w", idx+1, entry.Key, err)
			}
			if key := strings.TrimSpace(entry.Key); key != "" {
				packages[key] = pkg.ID
			}
			result.Packages++
		}

		for idx, entry := range catalog.Suppliers {
			supplier, err := upsertSupplier(tx, entry)
			if err != nil {
				return fmt.Errorf("supplier %d (%s): %w", idx+1, entry.Name, err)
			}
			result.Suppliers++

			for pidx, productEntry := range entry.Products {
				if err := upsertProduct(tx, supplier.ID, packages, productEntry); err != nil {
					return fmt.Errorf("supplier %q product %d (%s): %w", supplier.Name, pidx+1, productEntry.Name, err)
				}
				result.Products++
			}
		}
		return nil
	})
	if err != nil {
		return summary{}, err
	}
	return result, nil
}

func upsertPackage(tx *gorm.DB, entry PackageEntry) (models.Package, error) {
	pkg := models.Package{
		PackageType: models.PackageType(models.NormalizeChoice(entry.Type)),
		UOM:         models.UnitOfMeasure(models.NormalizeChoice(entry.UOM)),
		Size:        entry.Size,
	}
	if !pkg.PackageType.Valid() {
		return pkg, fmt.Errorf("unknown package type %q", entry.Type)
	}
	if !pkg.UOM.Valid() {
		return pkg, fmt.Errorf("unknown unit of measure %q", entry.UOM)
	}
	if pkg.Size == 0 {
		return pkg, fmt.Errorf("package size must be positive")
	}

	var existing models.Package
	err := tx.Where("package_type = ? AND uom = ? AND size = ?", pkg.PackageType, pkg.UOM, pkg.Size).First(&existing).Error
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return pkg, fmt.Errorf("find package: %w", err)
	}

	if err := tx.Create(&pkg).Error; err != nil {
		return pkg, fmt.Errorf("create package: %w", err)
	}
	return pkg, nil
}

func upsertSupplier(tx *gorm.DB, entry SupplierEntry) (models.Supplier, error) {
	supplier := models.Supplier{
		Name:    strings.TrimSpace(entry.Name),
		Country: strings.TrimSpace(entry.Country),
		City:    strings.TrimSpace(entry.City),
	}
	if supplier.Name == "" || supplier.Country == "" || supplier.City == "" {
		return supplier, fmt.Errorf("supplier name, country and city are required")
	}

	err := tx.Where(models.Supplier{Name: supplier.Name, Country: supplier.Country, City: supplier.City}).
		FirstOrCreate(&supplier).Error
	if err != nil {
		return supplier, fmt.Errorf("upsert supplier: %w", err)
	}
	return supplier, nil
}

// upsertProduct matches on product_id when given, else on supplier, code and
// name. A stored product_id is kept when the entry omits one.
func upsertProduct(tx *gorm.DB, supplierID uint, packages map[string]uint, entry ProductEntry) error {
	product := models.Product{
		Code:        strings.TrimSpace(entry.Code),
		Name:        strings.TrimSpace(entry.Name),
		Formula:     models.Formula(models.NormalizeChoice(entry.Formula)),
		ProductType: models.ProductType(models.NormalizeChoice(entry.Type)),
		SupplierID:  supplierID,
	}
	if id := strings.TrimSpace(entry.ProductID); id != "" {
		product.ProductID = &id
	}
	if product.Code == "" || product.Name == "" {
		return fmt.Errorf("product code and name are required")
	}
	if !product.Formula.Valid() {
		return fmt.Errorf("unknown formula %q", entry.Formula)
	}
	if !product.ProductType.Valid() {
		return fmt.Errorf("unknown product type %q", entry.Type)
	}
	if key := strings.TrimSpace(entry.Package); key != "" {
		id, ok := packages[key]
		if !ok {
			return fmt.Errorf("unknown package key %q", key)
		}
		product.PackageID = &id
	}

	query := tx.Where("supplier_id = ? AND code = ? AND name = ?", supplierID, product.Code, product.Name)
	if product.ProductID != nil {
		query = tx.Where("product_id = ?", *product.ProductID)
	}

	var existing models.Product
	err := query.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("find product: %w", err)
	}

	updates := map[string]any{
		"code":         product.Code,
		"name":         product.Name,
		"formula":      product.Formula,
		"product_type": product.ProductType,
		"supplier_id":  product.SupplierID,
		"package_id":   product.PackageID,
	}
	if product.ProductID != nil {
		updates["product_id"] = product.ProductID
	}
	if err := tx.Model(&existing).Updates(updates).Error; err != nil {
		return fmt.Errorf("update product %q: %w", existing.Name, err)
	}
	return nil
}
