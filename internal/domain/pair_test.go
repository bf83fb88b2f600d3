package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ValidatePair(t *testing.T) {
	t.Parallel()
	require.True(t, ValidatePair("USD/CNY"))
	require.True(t, ValidatePair("JPY/CNY"))
	require.False(t, ValidatePair("usd/cny"))
	require.False(t, ValidatePair("USD/EUR"))
	require.False(t, ValidatePair("USDCNY"))
	require.False(t, ValidatePair("CNY/CNY"))
	require.False(t, ValidatePair(""))
}

func Test_ParsePair(t *testing.T) {
	t.Parallel()
	p, err := ParsePair(" usd ")
	require.NoError(t, err)
	require.Equal(t, PairUSDCNY, p)

	p, err = ParsePair("gbp/cny")
	require.NoError(t, err)
	require.Equal(t, PairGBPCNY, p)

	_, err = ParsePair("BTC")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnsupportedPair)
}

func Test_ParsePairs(t *testing.T) {
	t.Parallel()
	got, err := ParsePairs("usd, eur ,usd,jpy")
	require.NoError(t, err)
	require.Equal(t, []Pair{PairUSDCNY, PairEURCNY, PairJPYCNY}, got)

	_, err = ParsePairs("usd,xxx")
	require.ErrorIs(t, err, ErrUnsupportedPair)

	got, err = ParsePairs(" , ,")
	require.NoError(t, err)
	require.Empty(t, got)
}

func Test_PairMetadata(t *testing.T) {
	t.Parallel()
	require.Equal(t, "USD", PairUSDCNY.Base())
	require.Equal(t, "US Dollar", PairUSDCNY.Name())
	require.Equal(t, "美元", PairUSDCNY.BankName())
	// Yahoo's USD/CNY symbol is the bare CNY=X, unlike the other crosses.
	require.Equal(t, "CNY=X", PairUSDCNY.YahooSymbol())
	require.Equal(t, "EURCNY=X", PairEURCNY.YahooSymbol())
	require.Len(t, AllPairs(), 5)
}
