package bloodpanel

import "labparse/internal/parser"

// labVocabulary are terms that mark a document as a lab report.
var labVocabulary = []string{
	"reference range", "reference interval", "specimen", "collected", "result",
	"units", "flag", "mg/dl", "mmol/l", "metabolic panel", "lipid panel",
	"complete blood count", "cbc", "hemoglobin", "glucose", "cholesterol",
}

// minVocabularyHits is how many distinct lab terms the generic adapter needs.
const minVocabularyHits = 3

// NewGeneric creates the catch-all lab report adapter. It claims any document
// with enough lab vocabulary but never earns the format-match credit.
func NewGeneric(opts parser.Options) *Adapter {
	return newAdapter(parser.LineEngine{
		Name:        "generic_lab",
		DisplayName: "Generic Lab Report",
		Options:     opts,
	}, PriorityGeneric, func(text, _ string) bool {
		return parser.CountDistinct(text, labVocabulary...) >= minVocabularyHits
	})
}
