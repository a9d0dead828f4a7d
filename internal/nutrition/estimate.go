package nutrition

// Estimate is the universal output of the estimation pipeline. Every field is
// independently optional: nil means "no value", which is distinct from zero.
// All values are integers; gram fields are rounded at parse time.
type Estimate struct {
	Calories *int `json:"calories,omitempty"`

	CarbsG   *int `json:"carbs_g,omitempty"`
	ProteinG *int `json:"protein_g,omitempty"`
	FatG     *int `json:"fat_g,omitempty"`

	SodiumMg *int `json:"sodium_mg,omitempty"`
	SugarsG  *int `json:"sugars_g,omitempty"`
	StarchG  *int `json:"starch_g,omitempty"`
	FibreG   *int `json:"fibre_g,omitempty"`

	SaturatedFatG       *int `json:"saturated_fat_g,omitempty"`
	MonounsaturatedFatG *int `json:"monounsaturated_fat_g,omitempty"`
	PolyunsaturatedFatG *int `json:"polyunsaturated_fat_g,omitempty"`
	TransFatG           *int `json:"trans_fat_g,omitempty"`

	AnimalProteinG *int `json:"animal_protein_g,omitempty"`
	PlantProteinG  *int `json:"plant_protein_g,omitempty"`
	CollagenG      *int `json:"collagen_g,omitempty"`

	VitaminAMg  *int `json:"vitamin_a_mg,omitempty"`
	VitaminB6Mg *int `json:"vitamin_b6_mg,omitempty"`
	VitaminB12Mg *int `json:"vitamin_b12_mg,omitempty"`
	VitaminCMg  *int `json:"vitamin_c_mg,omitempty"`
	VitaminDMg  *int `json:"vitamin_d_mg,omitempty"`
	VitaminEMg  *int `json:"vitamin_e_mg,omitempty"`

	CalciumMg   *int `json:"calcium_mg,omitempty"`
	IronMg      *int `json:"iron_mg,omitempty"`
	MagnesiumMg *int `json:"magnesium_mg,omitempty"`
	PotassiumMg *int `json:"potassium_mg,omitempty"`
	ZincMg      *int `json:"zinc_mg,omitempty"`
}

// Int returns a pointer to v, for populating optional fields.
func Int(v int) *int { return &v }

// fieldRefs returns the declared field list in a fixed order. All generic
// per-field operations (counting, merging, clamping) iterate this list
// instead of spelling out near-identical branches per field.
func (e *Estimate) fieldRefs() []**int {
	return []**int{
		&e.Calories,
		&e.CarbsG, &e.ProteinG, &e.FatG,
		&e.SodiumMg, &e.SugarsG, &e.StarchG, &e.FibreG,
		&e.SaturatedFatG, &e.MonounsaturatedFatG, &e.PolyunsaturatedFatG, &e.TransFatG,
		&e.AnimalProteinG, &e.PlantProteinG, &e.CollagenG,
		&e.VitaminAMg, &e.VitaminB6Mg, &e.VitaminB12Mg, &e.VitaminCMg, &e.VitaminDMg, &e.VitaminEMg,
		&e.CalciumMg, &e.IronMg, &e.MagnesiumMg, &e.PotassiumMg, &e.ZincMg,
	}
}

// FieldCount returns the number of populated fields. It is a tie-breaker
// score for ranking parse candidates and is never persisted.
func (e *Estimate) FieldCount() int {
	if e == nil {
		return 0
	}
	n := 0
	for _, f := range e.fieldRefs() {
		if *f != nil {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no field is populated.
func (e *Estimate) IsEmpty() bool { return e.FieldCount() == 0 }

// HasMacros reports whether any of the three macro fields is populated.
func (e *Estimate) HasMacros() bool {
	return e != nil && (e.CarbsG != nil || e.ProteinG != nil || e.FatG != nil)
}

// FillAbsent copies every populated field of src into dst where dst has no
// value yet. Populated dst fields are never overwritten.
func FillAbsent(dst, src *Estimate) {
	if dst == nil || src == nil {
		return
	}
	df := dst.fieldRefs()
	sf := src.fieldRefs()
	for i := range df {
		if *df[i] == nil && *sf[i] != nil {
			v := **sf[i]
			*df[i] = &v
		}
	}
}

// Clamp floors every populated field at zero, maintaining the invariant that
// no stored value is negative.
func (e *Estimate) Clamp() {
	if e == nil {
		return
	}
	for _, f := range e.fieldRefs() {
		if *f != nil && **f < 0 {
			**f = 0
		}
	}
}

// Clone returns a deep copy of the estimate.
func (e *Estimate) Clone() *Estimate {
	if e == nil {
		return nil
	}
	out := &Estimate{}
	FillAbsent(out, e)
	return out
}
