package copytrade

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/crossarb/exec"
	"github.com/web3guy0/crossarb/types"
	"github.com/web3guy0/crossarb/venue"
)

type fakeClient struct {
	placedToken []string
	placedSize  []decimal.Decimal
	placedPrice []decimal.Decimal
}

func (f *fakeClient) Venue() types.Venue { return types.VenuePolymarket }
func (f *fakeClient) IsConfigured() bool { return true }

func (f *fakeClient) GetActiveMarket() (*types.MarketWindow, error) { return nil, nil }

func (f *fakeClient) GetMarketDetails(id string) (*types.MarketWindow, error) {
	return nil, nil
}

func (f *fakeClient) MinShares() decimal.Decimal     { return decimal.NewFromInt(5) }
func (f *fakeClient) MinOrderValue() decimal.Decimal { return decimal.NewFromInt(1) }

func (f *fakeClient) CancelOrder(orderID string) bool { return true }

func (f *fakeClient) GetBalance() (decimal.Decimal, error) {
	return decimal.NewFromInt(100), nil
}

func (f *fakeClient) PlaceLimitOrder(tokenID string, price, size decimal.Decimal) venue.OrderResult {
	f.placedToken = append(f.placedToken, tokenID)
	f.placedSize = append(f.placedSize, size)
	f.placedPrice = append(f.placedPrice, price)
	return venue.OrderResult{Success: true, OrderID: "order_1"}
}

func newTestFollower(client *fakeClient, activityJSON string) (*Follower, *httptest.Server) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, activityJSON)
	}))
	f := NewFollower("0xabc", decimal.NewFromFloat(0.5), time.Second, client)
	f.baseURL = srv.URL
	return f, srv
}

func TestFilterNew_DedupesAndSkipsSells(t *testing.T) {
	client := &fakeClient{}
	f, srv := newTestFollower(client, `[]`)
	defer srv.Close()

	items := []activityItem{
		{TxHash: "0x1", Type: "TRADE", Side: "BUY", Asset: "tok1", Size: 2, Price: 0.5, Timestamp: 10},
		{TxHash: "0x2", Type: "TRADE", Side: "SELL", Asset: "tok1", Size: 2, Price: 0.5, Timestamp: 11},
		{TxHash: "0x3", Type: "REDEEM", Side: "BUY", Asset: "tok1", Size: 2, Price: 0.5, Timestamp: 12},
	}

	fresh := f.filterNew(items)
	require.Len(t, fresh, 1)
	assert.Equal(t, "tok1", fresh[0].Asset)

	// A second pass over the same items yields nothing
	assert.Empty(t, f.filterNew(items))
}

func TestReplay_ScalesAndAppliesFloors(t *testing.T) {
	client := &fakeClient{}
	f, srv := newTestFollower(client, `[]`)
	defer srv.Close()

	// 20 shares * 0.5 multiplier = 10, above the 5-share floor
	f.replay(exec.AggregatedOrder{
		Asset:     "tok1",
		Side:      "BUY",
		TotalSize: decimal.NewFromInt(20),
		AvgPrice:  decimal.NewFromFloat(0.40),
	})

	require.Len(t, client.placedSize, 1)
	assert.True(t, client.placedSize[0].Equal(decimal.NewFromInt(10)))
	assert.True(t, client.placedPrice[0].Equal(decimal.NewFromFloat(0.40)))
}

func TestReplay_BumpsToFloor(t *testing.T) {
	client := &fakeClient{}
	f, srv := newTestFollower(client, `[]`)
	defer srv.Close()

	// 4 * 0.5 = 2 shares, below the 5-share floor: bumped up, not skipped
	f.replay(exec.AggregatedOrder{
		Asset:     "tok1",
		Side:      "BUY",
		TotalSize: decimal.NewFromInt(4),
		AvgPrice:  decimal.NewFromFloat(0.50),
	})

	require.Len(t, client.placedSize, 1)
	assert.True(t, client.placedSize[0].Equal(decimal.NewFromInt(5)))
}

func TestReplay_SkipsUnusablePrice(t *testing.T) {
	client := &fakeClient{}
	f, srv := newTestFollower(client, `[]`)
	defer srv.Close()

	f.replay(exec.AggregatedOrder{
		Asset:     "tok1",
		Side:      "BUY",
		TotalSize: decimal.NewFromInt(10),
		AvgPrice:  decimal.Zero,
	})

	assert.Empty(t, client.placedSize)
}

func TestPollOnce_AggregatesBurstIntoOneOrder(t *testing.T) {
	client := &fakeClient{}
	// Three rapid sub-$1 fills on the same token
	f, srv := newTestFollower(client, `[
		{"transactionHash":"0x1","type":"TRADE","side":"BUY","asset":"tok1","size":1,"price":0.10,"timestamp":10},
		{"transactionHash":"0x2","type":"TRADE","side":"BUY","asset":"tok1","size":1,"price":0.12,"timestamp":11},
		{"transactionHash":"0x3","type":"TRADE","side":"BUY","asset":"tok1","size":1,"price":0.14,"timestamp":12}
	]`)
	defer srv.Close()

	f.pollOnce()

	// One synthetic order at the volume-weighted average, not three rejects
	require.Len(t, client.placedToken, 1)
	assert.Equal(t, "tok1", client.placedToken[0])
	assert.True(t, client.placedPrice[0].Equal(decimal.NewFromFloat(0.12)))
}

func TestFetchActivity_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewFollower("0xabc", decimal.NewFromFloat(0.5), time.Second, &fakeClient{})
	f.baseURL = srv.URL

	_, err := f.fetchActivity()
	assert.Error(t, err)
}
