package domain

// DexaRegionResult is one row of the regional body-composition table.
type DexaRegionResult struct {
	Region     string   `json:"region"`
	FatPct     *float64 `json:"fat_pct"`
	FatMassG   *float64 `json:"fat_mass_g"`
	LeanMassG  *float64 `json:"lean_mass_g"`
	BMCG       *float64 `json:"bmc_g"`
	TotalMassG *float64 `json:"total_mass_g"`
	Confidence float64  `json:"confidence"`
}

// DexaBoneDensityResult is one row of the bone-density table.
type DexaBoneDensityResult struct {
	Site       string   `json:"site"`
	BMD        *float64 `json:"bmd_g_cm2"`
	TScore     *float64 `json:"t_score"`
	ZScore     *float64 `json:"z_score"`
	Confidence float64  `json:"confidence"`
}

// DexaParseResult is the structured outcome of a body-composition scan.
type DexaParseResult struct {
	Success        bool            `json:"success"`
	ParserUsed     string          `json:"parser_used"`
	FormatDetected string          `json:"format_detected"`
	Confidence     ConfidenceLevel `json:"confidence"`
	RawConfidence  float64         `json:"raw_confidence"`
	NeedsReview    bool            `json:"needs_review"`
	Warnings       []string        `json:"warnings"`
	RawText        string          `json:"-"`
	PageCount      int             `json:"page_count"`
	ParseTimeMS    float64         `json:"parse_time_ms"`
	Error          string          `json:"error,omitempty"`

	ScanDate    *Date  `json:"scan_date,omitempty"`
	PatientName string `json:"patient_name,omitempty"`
	Facility    string `json:"facility,omitempty"`

	TotalBodyFatPct *float64 `json:"total_body_fat_pct"`
	TotalFatMassG   *float64 `json:"total_fat_mass_g"`
	TotalLeanMassG  *float64 `json:"total_lean_mass_g"`
	TotalBMCG       *float64 `json:"total_bmc_g"`
	TotalMassG      *float64 `json:"total_mass_g"`

	VisceralFatMassG     *float64 `json:"visceral_fat_mass_g"`
	VisceralFatVolumeCM3 *float64 `json:"visceral_fat_volume_cm3"`

	AndroidFatPct         *float64 `json:"android_fat_pct"`
	GynoidFatPct          *float64 `json:"gynoid_fat_pct"`
	AndroidGynoidRatio    *float64 `json:"android_gynoid_ratio"`
	AppendicularLeanMassG *float64 `json:"appendicular_lean_mass_g"`

	Regions     []DexaRegionResult      `json:"regions"`
	BoneDensity []DexaBoneDensityResult `json:"bone_density"`
}

// Region returns the region row with the given canonical name.
func (r *DexaParseResult) Region(name string) (DexaRegionResult, bool) {
	for _, reg := range r.Regions {
		if reg.Region == name {
			return reg, true
		}
	}
	return DexaRegionResult{}, false
}

// ToMarkers flattens the scan into marker rows.
func (r *DexaParseResult) ToMarkers() []MarkerResult {
	var out []MarkerResult
	add := func(name, display, unit string, v *float64, conf float64) {
		if v == nil {
			return
		}
		out = append(out, derivedMarker(name, display, unit, *v, conf, "dexa"))
	}

	add("total_body_fat_pct", "Total Body Fat %", "%", r.TotalBodyFatPct, r.RawConfidence)
	add("total_fat_mass_g", "Total Fat Mass", "g", r.TotalFatMassG, r.RawConfidence)
	add("total_lean_mass_g", "Total Lean Mass", "g", r.TotalLeanMassG, r.RawConfidence)
	add("total_bmc_g", "Total Bone Mineral Content", "g", r.TotalBMCG, r.RawConfidence)
	add("total_mass_g", "Total Mass", "g", r.TotalMassG, r.RawConfidence)
	add("visceral_fat_mass_g", "Visceral Fat Mass", "g", r.VisceralFatMassG, r.RawConfidence)
	add("visceral_fat_volume_cm3", "Visceral Fat Volume", "cm³", r.VisceralFatVolumeCM3, r.RawConfidence)
	add("android_fat_pct", "Android Fat %", "%", r.AndroidFatPct, r.RawConfidence)
	add("gynoid_fat_pct", "Gynoid Fat %", "%", r.GynoidFatPct, r.RawConfidence)
	add("android_gynoid_ratio", "Android/Gynoid Ratio", "", r.AndroidGynoidRatio, r.RawConfidence)
	add("appendicular_lean_mass_g", "Appendicular Lean Mass", "g", r.AppendicularLeanMassG, r.RawConfidence)

	for _, reg := range r.Regions {
		add(reg.Region+"_fat_pct", reg.Region+" fat %", "%", reg.FatPct, reg.Confidence)
		add(reg.Region+"_fat_mass_g", reg.Region+" fat mass", "g", reg.FatMassG, reg.Confidence)
		add(reg.Region+"_lean_mass_g", reg.Region+" lean mass", "g", reg.LeanMassG, reg.Confidence)
		add(reg.Region+"_bmc_g", reg.Region+" bone mineral content", "g", reg.BMCG, reg.Confidence)
		add(reg.Region+"_total_mass_g", reg.Region+" total mass", "g", reg.TotalMassG, reg.Confidence)
	}
	for _, b := range r.BoneDensity {
		add(b.Site+"_bmd", b.Site+" BMD", "g/cm²", b.BMD, b.Confidence)
		add(b.Site+"_t_score", b.Site+" T-score", "", b.TScore, b.Confidence)
		add(b.Site+"_z_score", b.Site+" Z-score", "", b.ZScore, b.Confidence)
	}
	return out
}

// ToParseResult converts the scan into the flat result shape.
func (r *DexaParseResult) ToParseResult() *ParseResult {
	markers := r.ToMarkers()
	res := &ParseResult{
		Success:        r.Success,
		ParserUsed:     r.ParserUsed,
		FormatDetected: r.FormatDetected,
		Confidence:     r.Confidence,
		Markers:        markers,
		Warnings:       append([]string{}, r.Warnings...),
		NeedsReview:    r.NeedsReview || anyBelow(markers, MediumThreshold),
		RawText:        r.RawText,
		PageCount:      r.PageCount,
		ParseTimeMS:    r.ParseTimeMS,
		PatientName:    r.PatientName,
		CollectionDate: r.ScanDate,
		LabName:        r.Facility,
		Error:          r.Error,
	}
	return res
}

func derivedMarker(name, display, unit string, v, conf float64, family string) MarkerResult {
	return MarkerResult{
		CanonicalName:     name,
		DisplayName:       display,
		Value:             v,
		ValueText:         formatFloat(v),
		Unit:              unit,
		CanonicalUnit:     unit,
		Confidence:        conf,
		ConfidenceReasons: []string{"derived from structured " + family + " extraction"},
		Page:              1,
	}
}

func anyBelow(markers []MarkerResult, threshold float64) bool {
	for _, m := range markers {
		if m.Confidence < threshold {
			return true
		}
	}
	return false
}
