package metrics

// Columns is the output schema, in the fixed order used by every sink.
var Columns = []string{
	"positive_score",
	"negative_score",
	"polarity_score",
	"average_sentence_length",
	"percentage_of_complex_words",
	"fog_index",
	"complex_word_count",
	"word_count",
	"uncertainty_score",
	"constraining_score",
	"positive_word_proportion",
	"negative_word_proportion",
	"uncertainty_word_proportion",
	"constraining_word_proportion",
	"constraining_words_whole_report",
}

// Record is the fixed set of scores computed for one document.
type Record struct {
	PositiveScore                int     `json:"positive_score"`
	NegativeScore                int     `json:"negative_score"`
	PolarityScore                float64 `json:"polarity_score"`
	AverageSentenceLength        float64 `json:"average_sentence_length"`
	PercentageOfComplexWords     float64 `json:"percentage_of_complex_words"`
	FogIndex                     float64 `json:"fog_index"`
	ComplexWordCount             int     `json:"complex_word_count"`
	WordCount                    int     `json:"word_count"`
	UncertaintyScore             int     `json:"uncertainty_score"`
	ConstrainingScore            int     `json:"constraining_score"`
	PositiveWordProportion       float64 `json:"positive_word_proportion"`
	NegativeWordProportion       float64 `json:"negative_word_proportion"`
	UncertaintyWordProportion    float64 `json:"uncertainty_word_proportion"`
	ConstrainingWordProportion   float64 `json:"constraining_word_proportion"`
	ConstrainingWordsWholeReport int     `json:"constraining_words_whole_report"`
}

// Values returns the record's fields in Columns order.
func (r Record) Values() []float64 {
	return []float64{
		float64(r.PositiveScore),
		float64(r.NegativeScore),
		r.PolarityScore,
		r.AverageSentenceLength,
		r.PercentageOfComplexWords,
		r.FogIndex,
		float64(r.ComplexWordCount),
		float64(r.WordCount),
		float64(r.UncertaintyScore),
		float64(r.ConstrainingScore),
		r.PositiveWordProportion,
		r.NegativeWordProportion,
		r.UncertaintyWordProportion,
		r.ConstrainingWordProportion,
		float64(r.ConstrainingWordsWholeReport),
	}
}

// Document is one unit of input: an identifier (URL or path) and its text.
type Document struct {
	ID   string
	Text string
}

// Outcome is the per-document result of a batch: either a Record or an error.
type Outcome struct {
	Index  int     `json:"index"`
	ID     string  `json:"id"`
	Record *Record `json:"record,omitempty"`
	Err    error   `json:"-"`
}

func (o Outcome) Failed() bool {
	return o.Err != nil || o.Record == nil
}

// Reason returns the failure reason, or "" for a scored document.
func (o Outcome) Reason() string {
	if o.Err != nil {
		return o.Err.Error()
	}
	if o.Record == nil {
		return "not scored"
	}
	return ""
}
