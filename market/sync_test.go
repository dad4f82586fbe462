package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAreInSync_DifferentSpellingsSameWindow(t *testing.T) {
	polyTitle := "Bitcoin Up or Down - 9:15AM-9:30AM ET"
	pfTitle := "BTC Up/Down 9:15-9:30AM ET"
	assert.True(t, AreInSync(polyTitle, pfTitle))
}

func TestAreInSync_Symmetric(t *testing.T) {
	a := "Bitcoin Up or Down - 9:15AM-9:30AM ET"
	b := "BTC Up/Down 9:15-9:30AM ET"
	assert.Equal(t, AreInSync(a, b), AreInSync(b, a))
}

func TestAreInSync_AdjacentWindows(t *testing.T) {
	assert.False(t, AreInSync(
		"Bitcoin Up or Down - 9:15AM-9:30AM ET",
		"BTC Up/Down 9:30-9:45AM ET",
	))
}

func TestAreInSync_MeridiemMismatch(t *testing.T) {
	assert.False(t, AreInSync(
		"Bitcoin Up or Down - 9:15AM-9:30AM ET",
		"BTC Up/Down 9:15-9:30PM ET",
	))
}

func TestAreInSync_UnparseableTitle(t *testing.T) {
	assert.False(t, AreInSync("Bitcoin Up or Down - 9:15AM-9:30AM ET", "BTC market"))
	assert.False(t, AreInSync("no label here", "none here either"))
}
