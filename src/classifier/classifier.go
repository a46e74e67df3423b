// backend/src/classifier/classifier.go
package classifier

import (
	"regexp"
	"strings"

	"github.com/tutum/covaex/backend/src/models"
)

// Classification pairs the asset type and settlement currency derived from
// one symbol. Both fields come from a single rule evaluation so they can
// never disagree.
type Classification struct {
	AssetType models.AssetType
	Currency  models.Currency
}

// cryptoSymbols is the fixed set of known cryptocurrency codes. Membership
// takes precedence over every pattern rule, so "ADA" is crypto even though
// it also matches the US ticker pattern.
var cryptoSymbols = map[string]bool{
	"BTC":  true,
	"ETH":  true,
	"XRP":  true,
	"USDT": true,
	"BNB":  true,
	"SOL":  true,
	"ADA":  true,
	"DOGE": true,
}

var (
	koreanCodeRe = regexp.MustCompile(`^\d{6}$`) // Korean market convention
	usTickerRe   = regexp.MustCompile(`^[A-Z]{3,4}$`)
)

// Classify derives the asset type and settlement currency from the symbol
// text. It is total and deterministic: every input, including the empty
// string, yields exactly one result.
func Classify(symbol string) Classification {
	s := strings.ToUpper(strings.TrimSpace(symbol))

	switch {
	case cryptoSymbols[s]:
		return Classification{models.AssetTypeCrypto, models.CurrencyUSD}
	case strings.Contains(s, "ETF"):
		return Classification{models.AssetTypeETF, currencyFor(s)}
	case koreanCodeRe.MatchString(s):
		return Classification{models.AssetTypeStock, models.CurrencyKRW}
	case usTickerRe.MatchString(s):
		return Classification{models.AssetTypeStock, models.CurrencyUSD}
	default:
		return Classification{models.AssetTypeStock, models.CurrencyKRW}
	}
}

// currencyFor applies the currency convention on its own for symbols whose
// asset type came from the ETF substring rule.
func currencyFor(upper string) models.Currency {
	switch {
	case koreanCodeRe.MatchString(upper):
		return models.CurrencyKRW
	case usTickerRe.MatchString(upper):
		return models.CurrencyUSD
	default:
		return models.CurrencyKRW
	}
}
