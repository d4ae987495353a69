package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssetValueAppliesMultiplier(t *testing.T) {
	stock := NewAsset("AAPL", "USD")
	assert.Equal(t, 1050.0, stock.Value(10, 105))

	future := Asset{Symbol: "ESZ4", Class: Future, Currency: "USD", Multiplier: 50}
	assert.Equal(t, 10*4500.0*50, future.Value(10, 4500))

	assert.Equal(t, -1050.0, stock.Value(-10, 105), "short exposure is negative")
}

func TestNewForexPair(t *testing.T) {
	pair := NewForexPair("EUR/USD")
	assert.Equal(t, Forex, pair.Class)
	assert.Equal(t, Currency("USD"), pair.Currency, "priced in the quote currency")

	crypto := NewCrypto("BTC", "USDT")
	assert.Equal(t, Crypto, crypto.Class)
}

func TestRegistryTradable(t *testing.T) {
	aapl := NewAsset("AAPL", "USD")
	msft := NewAsset("MSFT", "USD")

	var open Registry
	assert.True(t, open.Tradable(aapl), "nil registry accepts any valid asset")
	assert.False(t, open.Tradable(Asset{}), "but never an empty one")

	closed := NewRegistry(aapl)
	assert.True(t, closed.Tradable(aapl))
	assert.False(t, closed.Tradable(msft))
}
