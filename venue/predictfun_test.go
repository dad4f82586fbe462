package venue

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDryRunClient() *PredictFunClient {
	return NewPredictFunClient(PredictFunConfig{
		APIURL:   "http://localhost:0",
		Token:    "",
		DryRun:   true,
		MinValue: decimal.NewFromInt(1),
	})
}

func TestPredictFun_DryRunOrder(t *testing.T) {
	c := newDryRunClient()

	result := c.PlaceLimitOrder("tok1", decimal.NewFromFloat(0.45), decimal.NewFromInt(5))
	assert.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.OrderID, "DRY_"))

	// Dry-run cancels always succeed, nothing hits the wire
	assert.True(t, c.CancelOrder(result.OrderID))
}

func TestPredictFun_DryRunBalance(t *testing.T) {
	c := newDryRunClient()
	balance, err := c.GetBalance()
	require.NoError(t, err)
	assert.True(t, balance.IsPositive())
}

func TestPredictFun_IsConfigured(t *testing.T) {
	assert.False(t, newDryRunClient().IsConfigured())

	c := NewPredictFunClient(PredictFunConfig{Token: "secret", MinValue: decimal.NewFromInt(1)})
	assert.True(t, c.IsConfigured())
}

func TestPredictFun_LiveOrderRoundTrip(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch {
		case r.Method == "POST" && r.URL.Path == "/v1/orders":
			fmt.Fprint(w, `{"orderId":"pf_42","status":"OPEN"}`)
		case r.Method == "DELETE" && r.URL.Path == "/v1/orders/pf_42":
			fmt.Fprint(w, `{}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewPredictFunClient(PredictFunConfig{
		APIURL:   srv.URL,
		Token:    "secret",
		DryRun:   false,
		MinValue: decimal.NewFromInt(1),
	})

	result := c.PlaceLimitOrder("tok1", decimal.NewFromFloat(0.45), decimal.NewFromInt(5))
	require.True(t, result.Success)
	assert.Equal(t, "pf_42", result.OrderID)
	assert.Equal(t, "Bearer secret", gotAuth)

	assert.True(t, c.CancelOrder("pf_42"))
}

func TestPredictFun_VenueError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"insufficient funds"}`)
	}))
	defer srv.Close()

	c := NewPredictFunClient(PredictFunConfig{
		APIURL:   srv.URL,
		Token:    "secret",
		MinValue: decimal.NewFromInt(1),
	})

	result := c.PlaceLimitOrder("tok1", decimal.NewFromFloat(0.45), decimal.NewFromInt(5))
	assert.False(t, result.Success)
	assert.Equal(t, "insufficient funds", result.Error)
}
