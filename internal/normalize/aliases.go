package normalize

// markerAliases maps each canonical marker identifier to the spellings labs print.
// Keys are compared after Key folding, so punctuation and case do not matter here.
var markerAliases = map[string][]string{
	// Metabolic panel
	"glucose":                {"Glucose", "Glucose, Serum", "Fasting Glucose", "Glucose, Fasting", "Blood Glucose", "Glucose, Plasma"},
	"hemoglobin_a1c":         {"Hemoglobin A1c", "HbA1c", "A1c", "Hgb A1c", "Glycated Hemoglobin", "Glycohemoglobin", "Hemoglobin A1c (HbA1c)"},
	"insulin":                {"Insulin", "Fasting Insulin", "Insulin, Fasting"},
	"bun":                    {"BUN", "Urea Nitrogen", "Blood Urea Nitrogen", "Urea Nitrogen (BUN)"},
	"creatinine":             {"Creatinine", "Creatinine, Serum"},
	"egfr":                   {"eGFR", "eGFR Non-Afr. American", "eGFR African American", "Estimated GFR", "Glomerular Filtration Rate", "eGFR If NonAfricn Am", "eGFR If Africn Am"},
	"bun_creatinine_ratio":   {"BUN/Creatinine Ratio", "Urea Nitrogen/Creatinine Ratio"},
	"sodium":                 {"Sodium", "Sodium, Serum", "Na"},
	"potassium":              {"Potassium", "Potassium, Serum", "K"},
	"chloride":               {"Chloride", "Chloride, Serum", "Cl"},
	"carbon_dioxide":         {"Carbon Dioxide", "CO2", "Bicarbonate", "Carbon Dioxide, Total"},
	"calcium":                {"Calcium", "Calcium, Serum", "Ca"},
	"total_protein":          {"Total Protein", "Protein, Total"},
	"albumin":                {"Albumin", "Albumin, Serum"},
	"globulin":               {"Globulin", "Globulin, Total"},
	"albumin_globulin_ratio": {"Albumin/Globulin Ratio", "A/G Ratio"},
	"bilirubin_total":        {"Bilirubin, Total", "Total Bilirubin", "Bilirubin"},
	"bilirubin_direct":       {"Bilirubin, Direct", "Direct Bilirubin", "Bilirubin, Conjugated", "Conjugated Bilirubin"},
	"bilirubin_indirect":     {"Bilirubin, Indirect", "Indirect Bilirubin", "Bilirubin, Unconjugated", "Unconjugated Bilirubin"},
	"alkaline_phosphatase":   {"Alkaline Phosphatase", "Alk Phos", "ALP"},
	"ast":                    {"AST", "AST (SGOT)", "SGOT", "Aspartate Aminotransferase"},
	"alt":                    {"ALT", "ALT (SGPT)", "SGPT", "Alanine Aminotransferase"},
	"ggt":                    {"GGT", "Gamma-Glutamyl Transferase", "Gamma GT"},
	"uric_acid":              {"Uric Acid"},
	"magnesium":              {"Magnesium", "Magnesium, RBC"},
	"phosphorus":             {"Phosphorus", "Phosphate"},

	// Lipids and cardiovascular
	"total_cholesterol":   {"Cholesterol", "Total Cholesterol", "Cholesterol, Total"},
	"hdl_cholesterol":     {"HDL", "HDL Cholesterol", "HDL-C", "Cholesterol, HDL"},
	"ldl_cholesterol":     {"LDL", "LDL Cholesterol", "LDL-C", "LDL Chol Calc (NIH)", "LDL-Cholesterol, Calc", "Cholesterol, LDL"},
	"triglycerides":       {"Triglycerides", "Triglyceride", "Trig"},
	"non_hdl_cholesterol": {"Non-HDL Cholesterol", "Non HDL-C", "Cholesterol, Non-HDL"},
	"chol_hdl_ratio":      {"Chol/HDLC Ratio", "Cholesterol/HDL Ratio", "Total Cholesterol/HDL Ratio"},
	"apolipoprotein_b":    {"Apolipoprotein B", "Apo B", "ApoB"},
	"lipoprotein_a":       {"Lipoprotein (a)", "Lp(a)", "Lipoprotein a"},
	"hs_crp":              {"hs-CRP", "hsCRP", "C-Reactive Protein", "CRP", "High Sensitivity CRP", "C-Reactive Protein, Cardiac"},
	"homocysteine":        {"Homocysteine", "Homocyst(e)ine"},

	// Complete blood count
	"wbc":        {"WBC", "White Blood Cell Count", "White Blood Cells", "Leukocytes"},
	"rbc":        {"RBC", "Red Blood Cell Count", "Red Blood Cells", "Erythrocytes"},
	"hemoglobin": {"Hemoglobin", "Hgb"},
	"hematocrit": {"Hematocrit", "Hct"},
	"mcv":        {"MCV", "Mean Corpuscular Volume"},
	"mch":        {"MCH", "Mean Corpuscular Hemoglobin"},
	"mchc":       {"MCHC", "Mean Corpuscular Hemoglobin Concentration"},
	"rdw":        {"RDW", "RDW-CV", "Red Cell Distribution Width"},
	"platelets":  {"Platelets", "Platelet Count", "PLT"},
	"mpv":        {"MPV", "Mean Platelet Volume"},

	"neutrophils_pct": {"Neutrophils", "Neutrophils %", "Neutrophil %", "Neutrophils Percent", "Neutrophils (%)"},
	"lymphocytes_pct": {"Lymphocytes", "Lymphocytes %", "Lymphs", "Lymphocyte %"},
	"monocytes_pct":   {"Monocytes", "Monocytes %", "Monocyte %"},
	"eosinophils_pct": {"Eosinophils", "Eosinophils %", "Eos", "Eosinophil %"},
	"basophils_pct":   {"Basophils", "Basophils %", "Basos", "Basophil %"},
	"neutrophils_abs": {"Absolute Neutrophils", "Neutrophils (Absolute)", "Neutrophils, Absolute", "Neutrophils #", "ANC"},
	"lymphocytes_abs": {"Absolute Lymphocytes", "Lymphocytes (Absolute)", "Lymphs (Absolute)", "Lymphocytes #"},
	"monocytes_abs":   {"Absolute Monocytes", "Monocytes (Absolute)", "Monocytes #"},
	"eosinophils_abs": {"Absolute Eosinophils", "Eos (Absolute)", "Eosinophils (Absolute)", "Eosinophils #"},
	"basophils_abs":   {"Absolute Basophils", "Baso (Absolute)", "Basophils (Absolute)", "Basophils #"},

	// Thyroid
	"tsh":            {"TSH", "Thyroid Stimulating Hormone", "Thyrotropin"},
	"free_t4":        {"Free T4", "T4, Free", "FT4", "Free Thyroxine", "T4, Free (Direct)"},
	"free_t3":        {"Free T3", "T3, Free", "FT3", "Triiodothyronine, Free"},
	"tpo_antibodies": {"TPO Antibodies", "Thyroid Peroxidase Antibodies", "Thyroid Peroxidase (TPO) Ab", "TPO"},

	// Hormones
	"testosterone_total": {"Testosterone", "Testosterone, Total", "Total Testosterone", "Testosterone, Serum"},
	"testosterone_free":  {"Free Testosterone", "Testosterone, Free", "Free Testosterone (Direct)"},
	"estradiol":          {"Estradiol", "E2"},
	"shbg":               {"SHBG", "Sex Hormone Binding Globulin"},
	"dhea_s":             {"DHEA-S", "DHEA Sulfate", "DHEA-Sulfate", "DHEAS"},
	"cortisol":           {"Cortisol", "Cortisol, AM", "Cortisol, Total"},
	"psa":                {"PSA", "PSA, Total", "Prostate Specific Ag", "Prostate Specific Antigen"},
	"fsh":                {"FSH", "Follicle Stimulating Hormone"},
	"lh":                 {"LH", "Luteinizing Hormone"},
	"igf_1":              {"IGF-1", "IGF-I", "Insulin-Like Growth Factor I", "Insulin-Like Growth Factor 1"},

	// Vitamins, minerals and iron studies
	"vitamin_d":              {"Vitamin D", "Vitamin D, 25-Hydroxy", "25-Hydroxyvitamin D", "25-OH Vitamin D", "Vitamin D, 25-OH, Total", "Vitamin D 25 Hydroxy"},
	"vitamin_b12":            {"Vitamin B12", "B12", "Cobalamin"},
	"folate":                 {"Folate", "Folic Acid", "Folate, Serum"},
	"ferritin":               {"Ferritin", "Ferritin, Serum"},
	"iron":                   {"Iron", "Iron, Total", "Serum Iron"},
	"tibc":                   {"TIBC", "Iron Binding Capacity", "Total Iron Binding Capacity", "Iron Bind.Cap.(TIBC)"},
	"transferrin_saturation": {"Transferrin Saturation", "Iron Saturation", "% Saturation", "Iron Sat"},
	"zinc":                   {"Zinc", "Zinc, Plasma"},

	// Qualitative screens
	"hiv_screen":                  {"HIV 1/2 Ag/Ab Screen", "HIV Screen", "HIV-1/2 Antibody", "HIV Ag/Ab, 4th Gen", "HIV 1/2 Antigen and Antibodies", "HIV-1/2 Antigen and Antibodies, Fourth Generation"},
	"hepatitis_c_antibody":        {"Hepatitis C Antibody", "HCV Ab", "HCV Antibody", "Hep C Virus Ab"},
	"hepatitis_b_surface_antigen": {"Hepatitis B Surface Antigen", "HBsAg", "Hep B Surface Ag"},
	"rpr":                         {"RPR", "RPR Screen", "Syphilis RPR", "RPR (Monitor) W/Refl Titer"},

	// Urinalysis
	"urine_glucose": {"Glucose, Urine", "Urine Glucose", "Glucose, UA", "Glucose, Urine Qualitative"},
	"urine_protein": {"Urine Protein", "Protein, Urine", "Protein, UA", "Protein, Urine Qualitative"},
	"urine_ketones": {"Ketones, Urine", "Urine Ketones", "Ketones, UA", "Ketones"},
}
