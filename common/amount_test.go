package common

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNCGAmount(t *testing.T) {
	v, err := ParseNCGAmount("12.34")
	require.NoError(t, err)
	expected, _ := new(big.Int).SetString("12340000000000000000", 10)
	assert.Equal(t, expected, v)

	v, err = ParseNCGAmount("100")
	require.NoError(t, err)
	expected, _ = new(big.Int).SetString("100000000000000000000", 10)
	assert.Equal(t, expected, v)

	_, err = ParseNCGAmount("abc")
	assert.ErrorIs(t, err, ErrInvalidNCGAmount)

	_, err = ParseNCGAmount("0.0000000000000000001")
	assert.ErrorIs(t, err, ErrInvalidNCGAmount)
}

func TestFormatNCGAmount(t *testing.T) {
	v, _ := new(big.Int).SetString("12340000000000000000", 10)
	assert.Equal(t, "12.34", FormatNCGAmount(v))

	// truncated below 0.01
	v, _ = new(big.Int).SetString("1019999999999999999", 10)
	assert.Equal(t, "1.01", FormatNCGAmount(v))

	assert.Equal(t, "0.00", FormatNCGAmount(big.NewInt(5)))
	assert.Equal(t, "0.00", FormatNCGAmount(nil))
}

func TestIsNCGDust(t *testing.T) {
	assert.True(t, IsNCGDust(nil))
	assert.True(t, IsNCGDust(big.NewInt(9999999999999999)))
	assert.False(t, IsNCGDust(big.NewInt(10000000000000000)))
}

func TestNineChroniclesAddressBytes32(t *testing.T) {
	addr := RandEthAddress()
	to := NineChroniclesAddressToBytes32(addr)
	assert.Equal(t, addr, NineChroniclesAddressFromBytes32(to))
	assert.Equal(t, make([]byte, 12), to[20:])
}
