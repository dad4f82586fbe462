package venue

import (
	"crypto/ecdsa"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrivateKeyHex(t *testing.T) (string, *ecdsa.PrivateKey) {
	t.Helper()
	pk, err := crypto.GenerateKey()
	require.NoError(t, err)
	return hex.EncodeToString(crypto.FromECDSA(pk)), pk
}

func TestPolymarket_KeyDerivation(t *testing.T) {
	keyHex, pk := testPrivateKeyHex(t)

	c, err := NewPolymarketClient(PolymarketConfig{
		CLOBURL:    "http://localhost:0",
		GammaURL:   "http://localhost:0",
		PrivateKey: keyHex,
		DryRun:     true,
		MinShares:  decimal.NewFromInt(5),
		MinValue:   decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	assert.Equal(t, crypto.PubkeyToAddress(pk.PublicKey).Hex(), c.address)
	assert.True(t, c.IsConfigured())
}

func TestPolymarket_InvalidPrivateKey(t *testing.T) {
	_, err := NewPolymarketClient(PolymarketConfig{
		PrivateKey: "not-a-key",
	})
	assert.Error(t, err)
}

func TestPolymarket_DryRunOrder(t *testing.T) {
	c, err := NewPolymarketClient(PolymarketConfig{
		CLOBURL:   "http://localhost:0",
		GammaURL:  "http://localhost:0",
		DryRun:    true,
		MinShares: decimal.NewFromInt(5),
		MinValue:  decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	result := c.PlaceLimitOrder("tok1", decimal.NewFromFloat(0.50), decimal.NewFromInt(5))
	assert.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.OrderID, "DRY_"))
	assert.True(t, c.CancelOrder(result.OrderID))
}

func TestPolymarket_Floors(t *testing.T) {
	c, err := NewPolymarketClient(PolymarketConfig{
		DryRun:    true,
		MinShares: decimal.NewFromInt(5),
		MinValue:  decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	assert.True(t, c.MinShares().Equal(decimal.NewFromInt(5)))
	assert.True(t, c.MinOrderValue().Equal(decimal.NewFromInt(1)))
}

func TestPolymarket_HMACSignatureIsDeterministic(t *testing.T) {
	c, err := NewPolymarketClient(PolymarketConfig{
		APIKey:    "key",
		APISecret: "secret",
		DryRun:    true,
	})
	require.NoError(t, err)

	a := c.hmacSign("1700000000GET/balance")
	b := c.hmacSign("1700000000GET/balance")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c.hmacSign("1700000001GET/balance"))
}
