// pkg/api/rows_v1.go
package api

// LabelV1 is the stable JSONL schema for cohort labels.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type LabelV1 struct {
	PIN      string `json:"pin"`
	Class    int    `json:"class"`
	SupplyDt string `json:"spply_dt"` // first family-drug supply, ddMonyyyy
}

// SequenceRowV1 is the stable JSONL schema for extracted service sequences.
type SequenceRowV1 struct {
	PIN       string  `json:"pin"`
	Seq       string  `json:"seq"`
	EncSeq    string  `json:"enc_seq"`
	SeqLength int     `json:"seq_length"`
	AvgAge    float64 `json:"avg_age"`
	PINState  string  `json:"pinstate,omitempty"`
	Sex       string  `json:"sex,omitempty"`
}
