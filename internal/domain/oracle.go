package domain

import "context"

// OraclePurpose labels why the language model is being asked.
type OraclePurpose string

const (
	// OraclePurposeFilter is query-to-filter extraction at search time.
	OraclePurposeFilter OraclePurpose = "filter"
	// OraclePurposeClassify is content analysis at save time.
	OraclePurposeClassify OraclePurpose = "classify"
)

// OracleRequest is a single prompt, optionally with an image to look at.
type OracleRequest struct {
	Purpose  OraclePurpose
	Prompt   string
	ImageURL string
}

// OracleResponse is free-form model output expected to hold one JSON object.
type OracleResponse struct {
	Text        string
	TotalTokens int
}

// Oracle is the fuzzy, best-effort language model used for extraction and tagging.
type Oracle interface {
	Complete(ctx context.Context, req OracleRequest) (OracleResponse, error)
}

// BudgetPeriod is a token budget window.
type BudgetPeriod string

// Budget windows. Both roll over at UTC midnight boundaries.
const (
	BudgetDaily   BudgetPeriod = "daily"
	BudgetMonthly BudgetPeriod = "monthly"
)
