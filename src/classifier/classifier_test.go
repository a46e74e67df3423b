package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tutum/covaex/backend/src/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		symbol       string
		wantType     models.AssetType
		wantCurrency models.Currency
	}{
		{"BTC", models.AssetTypeCrypto, models.CurrencyUSD},
		{"btc", models.AssetTypeCrypto, models.CurrencyUSD},
		{" ETH ", models.AssetTypeCrypto, models.CurrencyUSD},
		{"005930", models.AssetTypeStock, models.CurrencyKRW},
		{"TSLA", models.AssetTypeStock, models.CurrencyUSD},
		{"AMD", models.AssetTypeStock, models.CurrencyUSD},
		{"", models.AssetTypeStock, models.CurrencyKRW},
		{"삼성전자", models.AssetTypeStock, models.CurrencyKRW},
		{"GOOGL", models.AssetTypeStock, models.CurrencyKRW}, // five letters falls through to the default
		{"KODEX ETF", models.AssetTypeETF, models.CurrencyKRW},
		{"ETF", models.AssetTypeETF, models.CurrencyUSD},
		{"etf123", models.AssetTypeETF, models.CurrencyKRW},
	}
	for _, tc := range tests {
		got := Classify(tc.symbol)
		assert.Equal(t, tc.wantType, got.AssetType, "Classify(%q) asset type", tc.symbol)
		assert.Equal(t, tc.wantCurrency, got.Currency, "Classify(%q) currency", tc.symbol)
	}
}

// Crypto membership wins over the US ticker pattern even when both match.
func TestClassifyCryptoPrecedence(t *testing.T) {
	for _, symbol := range []string{"BTC", "ETH", "XRP", "USDT", "BNB", "SOL", "ADA", "DOGE"} {
		got := Classify(symbol)
		assert.Equal(t, models.AssetTypeCrypto, got.AssetType, "Classify(%q)", symbol)
		assert.Equal(t, models.CurrencyUSD, got.Currency, "Classify(%q)", symbol)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for _, symbol := range []string{"", "BTC", "005930", "TSLA", "KODEX ETF", "whatever"} {
		first := Classify(symbol)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, Classify(symbol), "Classify(%q) call %d", symbol, i+2)
		}
	}
}
