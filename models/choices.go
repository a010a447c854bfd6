package models

import "strings"

// Choice is a stored value paired with its human readable label.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func labelFor(choices []Choice, value string) string {
	for _, c := range choices {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

func validChoice(choices []Choice, value string) bool {
	for _, c := range choices {
		if c.Value == value {
			return true
		}
	}
	return false
}

// ChoiceValues returns the stored values of choices, in declaration order.
func ChoiceValues(choices []Choice) []string {
	values := make([]string, 0, len(choices))
	for _, c := range choices {
		values = append(values, c.Value)
	}
	return values
}

// PackageType is the kind of container a product ships in.
type PackageType string

const (
	PackageTote     PackageType = "TOTE"
	PackageDrum     PackageType = "DRUM"
	PackagePale     PackageType = "PALE"
	PackageCanister PackageType = "CANISTER"
	PackageCan      PackageType = "CAN"
	PackageBag      PackageType = "BAG"
)

var PackageTypeChoices = []Choice{
	{string(PackageTote), "Tote"},
	{string(PackageDrum), "Drum"},
	{string(PackagePale), "Pale"},
	{string(PackageCanister), "Canister"},
	{string(PackageCan), "Can"},
	{string(PackageBag), "Bag"},
}

func (t PackageType) Label() string { return labelFor(PackageTypeChoices, string(t)) }
func (t PackageType) Valid() bool   { return validChoice(PackageTypeChoices, string(t)) }

// UnitOfMeasure is the unit a package size is expressed in.
type UnitOfMeasure string

const (
	UnitKilogram UnitOfMeasure = "KG"
	UnitLiter    UnitOfMeasure = "LTR"
)

var UnitOfMeasureChoices = []Choice{
	{string(UnitKilogram), "kg"},
	{string(UnitLiter), "ltr"},
}

func (u UnitOfMeasure) Label() string { return labelFor(UnitOfMeasureChoices, string(u)) }
func (u UnitOfMeasure) Valid() bool   { return validChoice(UnitOfMeasureChoices, string(u)) }

// Formula is the formula technology of a product.
type Formula string

const (
	FormulaSolventborne Formula = "SB"
	FormulaWaterborne   Formula = "WB"
	FormulaPowder       Formula = "PD"
	FormulaAcid         Formula = "AC"
	FormulaAmine        Formula = "AM"
)

var FormulaChoices = []Choice{
	{string(FormulaSolventborne), "Solventborne"},
	{string(FormulaWaterborne), "Waterborne"},
	{string(FormulaPowder), "Powder coating"},
	{string(FormulaAcid), "Acid"},
	{string(FormulaAmine), "Amine"},
}

func (f Formula) Label() string { return labelFor(FormulaChoices, string(f)) }
func (f Formula) Valid() bool   { return validChoice(FormulaChoices, string(f)) }

// ProductType is the role a product plays in the layering system.
type ProductType string

const (
	ProductPretreatment    ProductType = "PT"
	ProductElectrocoat     ProductType = "ED"
	ProductPrimer          ProductType = "PR"
	ProductColorBase       ProductType = "CB"
	ProductBaseCoat        ProductType = "BC"
	ProductBase1           ProductType = "B1"
	ProductBase2           ProductType = "B2"
	ProductClearCoat       ProductType = "CC"
	ProductMonocoat        ProductType = "MC"
	ProductThinner         ProductType = "TH"
	ProductCleaningSolvent ProductType = "CS"
	ProductAdditive        ProductType = "AD"
)

var ProductTypeChoices = []Choice{
	{string(ProductPretreatment), "Pretreatment"},
	{string(ProductElectrocoat), "Electrocoat"},
	{string(ProductPrimer), "Primer"},
	{string(ProductColorBase), "Color base"},
	{string(ProductBaseCoat), "Base coat"},
	{string(ProductBase1), "Base 1"},
	{string(ProductBase2), "Base 2"},
	{string(ProductClearCoat), "Clear coat"},
	{string(ProductMonocoat), "Monocoat"},
	{string(ProductThinner), "Thinner"},
	{string(ProductCleaningSolvent), "Cleaning solvent"},
	{string(ProductAdditive), "Additive"},
}

func (t ProductType) Label() string { return labelFor(ProductTypeChoices, string(t)) }
func (t ProductType) Valid() bool   { return validChoice(ProductTypeChoices, string(t)) }

// ColorCategory tells where a color measurement came from.
type ColorCategory string

const (
	ColorCategorySheet        ColorCategory = "CS"
	ColorCategoryQualityCheck ColorCategory = "QC"
)

var ColorCategoryChoices = []Choice{
	{string(ColorCategorySheet), "Batch color sheet"},
	{string(ColorCategoryQualityCheck), "Batch panel quality inspection"},
}

func (c ColorCategory) Label() string { return labelFor(ColorCategoryChoices, string(c)) }
func (c ColorCategory) Valid() bool   { return validChoice(ColorCategoryChoices, string(c)) }

// NormalizeChoice trims and upper-cases a submitted choice value.
func NormalizeChoice(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}
