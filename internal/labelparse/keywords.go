package labelparse

import (
	"regexp"

	"github.com/MeKo-Tech/platescan/internal/nutrition"
)

// Keyword patterns cover the languages the app ships label support for:
// English, French, German, Spanish and Italian. Macro rows are anchored to
// the line start (ignoring leading bullets/whitespace) so that subtype rows
// like "of which saturates" or "plant protein" never populate the totals.

var (
	// lineStart permits punctuation and digits before the keyword but no
	// letters, which is what anchors a matcher to its own label row.
	energyKeywordRe = regexp.MustCompile(
		`(?:energy|[eé]nergie|energ[ií]a|brennwert|valor energ[eé]tico|calor[ií]as?|calories?|kcal)`)

	// kcalValueRe finds an explicitly kcal-united number after the energy
	// keyword, preferred over a bare or kJ-united one. The parser bounds the
	// keyword-to-number separator; the pattern itself is unanchored so a kJ
	// figure may precede the kcal one ("1046 kJ / 250 kcal").
	kcalValueRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*kcal\b`)

	sodiumKeywordRe = regexp.MustCompile(`^[^a-zµμ]*(?:sodium|natrium|sodio)\b`)
	saltKeywordRe   = regexp.MustCompile(`^[^a-zµμ]*(?:salt|salz|sel|sal|sale)\b`)
)

// gramField binds a keyword pattern to one grams-valued estimate field.
type gramField struct {
	name    string
	keyword *regexp.Regexp
	get     func(*nutrition.Estimate) *int
	set     func(*nutrition.Estimate, int)
}

// gramFields is evaluated in order per line; subtype rows are listed before
// the anchored totals they could otherwise be mistaken for.
var gramFields = []gramField{
	{
		name:    "saturated_fat",
		keyword: regexp.MustCompile(`\b(?:saturated|saturates|satur[eé]s|ges[aä]ttigte?|saturadas?|saturi)\b`),
		get:     func(e *nutrition.Estimate) *int { return e.SaturatedFatG },
		set:     func(e *nutrition.Estimate, v int) { e.SaturatedFatG = &v },
	},
	{
		name:    "monounsaturated_fat",
		keyword: regexp.MustCompile(`\b(?:monounsaturate[sd]?|monoinsatur[eé]s?|einfach unges[aä]ttigte?|monoinsaturadas?|monoinsaturi)\b`),
		get:     func(e *nutrition.Estimate) *int { return e.MonounsaturatedFatG },
		set:     func(e *nutrition.Estimate, v int) { e.MonounsaturatedFatG = &v },
	},
	{
		name:    "polyunsaturated_fat",
		keyword: regexp.MustCompile(`\b(?:polyunsaturate[sd]?|polyinsatur[eé]s?|mehrfach unges[aä]ttigte?|poliinsaturadas?|polinsaturi)\b`),
		get:     func(e *nutrition.Estimate) *int { return e.PolyunsaturatedFatG },
		set:     func(e *nutrition.Estimate, v int) { e.PolyunsaturatedFatG = &v },
	},
	{
		name:    "trans_fat",
		keyword: regexp.MustCompile(`\btrans\b`),
		get:     func(e *nutrition.Estimate) *int { return e.TransFatG },
		set:     func(e *nutrition.Estimate, v int) { e.TransFatG = &v },
	},
	{
		name:    "animal_protein",
		keyword: regexp.MustCompile(`\b(?:animal protein|prote[ií]nas? animal\w*|proteine animali|prot[eé]ines? animales?|tierisches? protein)`),
		get:     func(e *nutrition.Estimate) *int { return e.AnimalProteinG },
		set:     func(e *nutrition.Estimate, v int) { e.AnimalProteinG = &v },
	},
	{
		name:    "plant_protein",
		keyword: regexp.MustCompile(`\b(?:plant protein|vegetable protein|prote[ií]nas? vegetal\w*|proteine vegetali|prot[eé]ines? v[eé]g[eé]tales?|pflanzliches? protein)`),
		get:     func(e *nutrition.Estimate) *int { return e.PlantProteinG },
		set:     func(e *nutrition.Estimate, v int) { e.PlantProteinG = &v },
	},
	{
		name:    "collagen",
		keyword: regexp.MustCompile(`\b(?:collagen|kollagen|col[aá]geno|collag[eè]ne)`),
		get:     func(e *nutrition.Estimate) *int { return e.CollagenG },
		set:     func(e *nutrition.Estimate, v int) { e.CollagenG = &v },
	},
	{
		name:    "sugars",
		keyword: regexp.MustCompile(`\b(?:sugars?|sucres?|zucker|az[uú]car(?:es)?|zuccheri)\b`),
		get:     func(e *nutrition.Estimate) *int { return e.SugarsG },
		set:     func(e *nutrition.Estimate, v int) { e.SugarsG = &v },
	},
	{
		name:    "fibre",
		keyword: regexp.MustCompile(`\b(?:fibre|fiber|fibres|ballaststoffe|fibra)\b`),
		get:     func(e *nutrition.Estimate) *int { return e.FibreG },
		set:     func(e *nutrition.Estimate, v int) { e.FibreG = &v },
	},
	{
		name:    "starch",
		keyword: regexp.MustCompile(`\b(?:starch|amidon|st[aä]rke|almid[oó]n|amido)\b`),
		get:     func(e *nutrition.Estimate) *int { return e.StarchG },
		set:     func(e *nutrition.Estimate, v int) { e.StarchG = &v },
	},
	{
		name:    "carbs",
		keyword: regexp.MustCompile(`^[^a-zµμ]*(?:total )?(?:carbohydrates?|carbs?|glucides|kohlenhydrate|hidratos de carbono|carboidrati)\b`),
		get:     func(e *nutrition.Estimate) *int { return e.CarbsG },
		set:     func(e *nutrition.Estimate, v int) { e.CarbsG = &v },
	},
	{
		name:    "protein",
		keyword: regexp.MustCompile(`^[^a-zµμ]*(?:(?:proteins?|prote[ií]nas?|prot[eé]ines?|proteine|eiweiss)\b|eiweiß)`),
		get:     func(e *nutrition.Estimate) *int { return e.ProteinG },
		set:     func(e *nutrition.Estimate, v int) { e.ProteinG = &v },
	},
	{
		name:    "fat",
		keyword: regexp.MustCompile(`^[^a-zµμ]*(?:total fat|fat|fett|grasas?|graisses?|mati[eè]res grasses|lipides|grassi)\b`),
		get:     func(e *nutrition.Estimate) *int { return e.FatG },
		set:     func(e *nutrition.Estimate, v int) { e.FatG = &v },
	},
}

// microField binds a keyword pattern to one mg-valued vitamin/mineral field.
type microField struct {
	name    string
	keyword *regexp.Regexp
	get     func(*nutrition.Estimate) *int
	set     func(*nutrition.Estimate, int)
}

var microFields = []microField{
	{
		name:    "vitamin_b12",
		keyword: regexp.MustCompile(`vitamin[ae]?\s+b-?12\b`),
		get:     func(e *nutrition.Estimate) *int { return e.VitaminB12Mg },
		set:     func(e *nutrition.Estimate, v int) { e.VitaminB12Mg = &v },
	},
	{
		name:    "vitamin_b6",
		keyword: regexp.MustCompile(`vitamin[ae]?\s+b-?6\b`),
		get:     func(e *nutrition.Estimate) *int { return e.VitaminB6Mg },
		set:     func(e *nutrition.Estimate, v int) { e.VitaminB6Mg = &v },
	},
	{
		name:    "vitamin_a",
		keyword: regexp.MustCompile(`vitamin[ae]?\s+a\b`),
		get:     func(e *nutrition.Estimate) *int { return e.VitaminAMg },
		set:     func(e *nutrition.Estimate, v int) { e.VitaminAMg = &v },
	},
	{
		name:    "vitamin_c",
		keyword: regexp.MustCompile(`vitamin[ae]?\s+c\b`),
		get:     func(e *nutrition.Estimate) *int { return e.VitaminCMg },
		set:     func(e *nutrition.Estimate, v int) { e.VitaminCMg = &v },
	},
	{
		name:    "vitamin_d",
		keyword: regexp.MustCompile(`vitamin[ae]?\s+d3?\b`),
		get:     func(e *nutrition.Estimate) *int { return e.VitaminDMg },
		set:     func(e *nutrition.Estimate, v int) { e.VitaminDMg = &v },
	},
	{
		name:    "vitamin_e",
		keyword: regexp.MustCompile(`vitamin[ae]?\s+e\b`),
		get:     func(e *nutrition.Estimate) *int { return e.VitaminEMg },
		set:     func(e *nutrition.Estimate, v int) { e.VitaminEMg = &v },
	},
	{
		name:    "calcium",
		keyword: regexp.MustCompile(`\b(?:calcium|kalzium|calcio)\b`),
		get:     func(e *nutrition.Estimate) *int { return e.CalciumMg },
		set:     func(e *nutrition.Estimate, v int) { e.CalciumMg = &v },
	},
	{
		name:    "iron",
		keyword: regexp.MustCompile(`\b(?:iron|fer|eisen|hierro|ferro)\b`),
		get:     func(e *nutrition.Estimate) *int { return e.IronMg },
		set:     func(e *nutrition.Estimate, v int) { e.IronMg = &v },
	},
	{
		name:    "magnesium",
		keyword: regexp.MustCompile(`\b(?:magnesium|magnesio|magn[eé]sium)\b`),
		get:     func(e *nutrition.Estimate) *int { return e.MagnesiumMg },
		set:     func(e *nutrition.Estimate, v int) { e.MagnesiumMg = &v },
	},
	{
		name:    "potassium",
		keyword: regexp.MustCompile(`\b(?:potassium|kalium|potasio|potassio)\b`),
		get:     func(e *nutrition.Estimate) *int { return e.PotassiumMg },
		set:     func(e *nutrition.Estimate, v int) { e.PotassiumMg = &v },
	},
	{
		name:    "zinc",
		keyword: regexp.MustCompile(`\b(?:zinc|zink|cinc|zinco)\b`),
		get:     func(e *nutrition.Estimate) *int { return e.ZincMg },
		set:     func(e *nutrition.Estimate, v int) { e.ZincMg = &v },
	},
}
