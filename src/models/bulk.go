// backend/src/models/bulk.go
package models

// BulkAsset is one element of the payload sent to the asset ingestion API.
// Name is always populated; the wizard defaults it to the symbol.
type BulkAsset struct {
	Symbol          string          `json:"symbol"`
	Name            string          `json:"name"`
	AssetType       AssetType       `json:"asset_type"`
	Quantity        float64         `json:"quantity"`
	AveragePrice    float64         `json:"average_price"`
	Currency        Currency        `json:"currency"`
	ExchangeRate    *float64        `json:"exchange_rate,omitempty"`
	TransactionType TransactionType `json:"transaction_type,omitempty"`
	TransactionDate string          `json:"transaction_date,omitempty"`
	AccountName     string          `json:"account_name,omitempty"`
}

// BulkPayload is the request body of the bulk registration endpoint.
type BulkPayload struct {
	Assets []BulkAsset `json:"assets"`
}

// BulkFailure describes one row the ingestion API rejected. Row is the
// zero-based index of the asset within the submitted payload; Error is the
// server-supplied reason and is shown to the user as-is.
type BulkFailure struct {
	Row    int    `json:"row"`
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// BulkResponse is the ingestion API's per-row outcome report. A non-zero
// FailureCount alongside a non-zero SuccessCount means a partial success;
// succeeded rows are not rolled back.
type BulkResponse struct {
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
	Failures     []BulkFailure `json:"failures"`
	CreatedIDs   []string      `json:"created_ids"`
}
