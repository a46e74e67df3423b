// backend/src/models/asset.go
package models

// AssetType is the category an imported asset belongs to.
type AssetType string

const (
	AssetTypeStock  AssetType = "stock"
	AssetTypeCrypto AssetType = "crypto"
	AssetTypeETF    AssetType = "etf"
)

// Valid reports whether t is one of the supported asset types.
func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeStock, AssetTypeCrypto, AssetTypeETF:
		return true
	}
	return false
}

// Currency is the settlement currency of an imported asset.
type Currency string

const (
	CurrencyKRW Currency = "KRW"
	CurrencyUSD Currency = "USD"
	CurrencyJPY Currency = "JPY"
)

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyKRW, CurrencyUSD, CurrencyJPY:
		return true
	}
	return false
}

// TransactionType is the normalized buy/sell vocabulary of the template's
// 거래 유형 column. Empty means the column was absent or unrecognized.
type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// AssetRecord is the typed unit projected from one data row of the import
// template. Optional columns are omitted from JSON when absent.
type AssetRecord struct {
	Symbol          string          `json:"symbol"`
	Name            string          `json:"name,omitempty"`
	Quantity        float64         `json:"quantity"`
	AveragePrice    float64         `json:"average_price"`
	ExchangeRate    *float64        `json:"exchange_rate,omitempty"`
	TransactionType TransactionType `json:"transaction_type,omitempty"`
	TransactionDate string          `json:"transaction_date,omitempty"`
	AccountName     string          `json:"account_name,omitempty"`
}

// ClassifiedAssetRecord is an AssetRecord extended with the asset type and
// currency derived from its symbol. Both fields are user-editable in the
// confirmation grid; a direct edit survives until the symbol changes again.
type ClassifiedAssetRecord struct {
	AssetRecord
	AssetType AssetType `json:"asset_type"`
	Currency  Currency  `json:"currency"`
}
