package market

// Currency is an ISO-4217 style currency code, e.g. "USD".
type Currency string

// AssetClass identifies the kind of tradable instrument.
type AssetClass int8

const (
	Stock AssetClass = iota
	Forex
	Crypto
	Future
)

func (c AssetClass) String() string {
	switch c {
	case Stock:
		return "STOCK"
	case Forex:
		return "FOREX"
	case Crypto:
		return "CRYPTO"
	case Future:
		return "FUTURE"
	default:
		return "UNKNOWN"
	}
}

// Asset identifies a tradable instrument. It is a value type: two assets are
// the same instrument iff all identity fields are equal, so Asset can be used
// directly as a map key.
type Asset struct {
	Symbol     string
	Class      AssetClass
	Currency   Currency
	Venue      string
	Multiplier float64 // contract multiplier, 1 for stocks/forex/crypto
}

// NewAsset returns a stock-class asset with multiplier 1.
func NewAsset(symbol string, currency Currency) Asset {
	return Asset{Symbol: symbol, Class: Stock, Currency: currency, Multiplier: 1}
}

// NewForexPair returns a forex asset for a "EUR_USD" style symbol. The quote
// currency (after the underscore) is the asset currency.
func NewForexPair(symbol string) Asset {
	quote := symbol
	for i := len(symbol) - 1; i >= 0; i-- {
		if symbol[i] == '_' || symbol[i] == '/' {
			quote = symbol[i+1:]
			break
		}
	}
	return Asset{Symbol: symbol, Class: Forex, Currency: Currency(quote), Multiplier: 1}
}

// NewCrypto returns a crypto asset quoted in the given currency.
func NewCrypto(symbol string, currency Currency) Asset {
	return Asset{Symbol: symbol, Class: Crypto, Currency: currency, Multiplier: 1}
}

// Valid reports whether the asset carries the minimum identity required for
// trading.
func (a Asset) Valid() bool {
	return a.Symbol != "" && a.Currency != "" && a.Multiplier > 0
}

// Value returns the account-currency-free value of a quantity at a price,
// expressed in the asset's own currency.
func (a Asset) Value(size, price float64) float64 {
	return size * price * a.Multiplier
}

// Registry is a read-only set of tradable assets, passed explicitly into
// components that validate orders. A nil Registry accepts every valid asset.
type Registry map[Asset]struct{}

func NewRegistry(assets ...Asset) Registry {
	r := make(Registry, len(assets))
	for _, a := range assets {
		r[a] = struct{}{}
	}
	return r
}

// Tradable reports whether orders for the asset should be accepted.
func (r Registry) Tradable(a Asset) bool {
	if r == nil {
		return a.Valid()
	}
	_, ok := r[a]
	return ok
}
