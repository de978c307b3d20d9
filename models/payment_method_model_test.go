package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCardType(t *testing.T) {
	cases := []struct {
		number string
		want   string
	}{
		{"4111111111111111", CardTypeVisa},
		{"4012 8888 8888 1881", CardTypeVisa},
		{"5105105105105100", CardTypeMastercard},
		{"5555555555554444", CardTypeMastercard},
		{"2221000000000009", CardTypeMastercard},
		{"2720999999999996", CardTypeMastercard},
		{"2121000000000000", CardTypeUnknown},
		{"2721000000000000", CardTypeUnknown},
		{"340000000000009", CardTypeAmex},
		{"370000000000002", CardTypeAmex},
		{"6011000000000004", CardTypeDiscover},
		{"6221260000000000", CardTypeDiscover},
		{"6229250000000000", CardTypeDiscover},
		{"6229260000000000", CardTypeUnknown},
		{"6440000000000000", CardTypeDiscover},
		{"6500000000000000", CardTypeDiscover},
		{"9999999999999999", CardTypeUnknown},
		{"", CardTypeUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectCardType(tc.number), "number %q", tc.number)
	}
}

func TestCleanCardNumber(t *testing.T) {
	cleaned, err := CleanCardNumber("4111 1111 1111 1111")
	require.NoError(t, err)
	assert.Equal(t, "4111111111111111", cleaned)

	cleaned, err = CleanCardNumber("4111-1111-1111-1111")
	require.NoError(t, err)
	assert.Equal(t, "4111111111111111", cleaned)

	_, err = CleanCardNumber("411111111111")
	assert.EqualError(t, err, "Card number must be between 13 and 19 digits")

	_, err = CleanCardNumber("41111111111111111111")
	assert.EqualError(t, err, "Card number must be between 13 and 19 digits")

	_, err = CleanCardNumber("abcd")
	assert.EqualError(t, err, "Card number can only contain numbers")
}

func TestValidateExpiry(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateExpiry("06", "24", now), "expiring this month is still valid")
	assert.NoError(t, ValidateExpiry("12", "2030", now))

	err := ValidateExpiry("13", "30", now)
	assert.EqualError(t, err, "Month must be between 01 and 12")

	err = ValidateExpiry("1", "30", now)
	assert.EqualError(t, err, "Month must be between 01 and 12")

	err = ValidateExpiry("05", "24", now)
	assert.EqualError(t, err, "Card has expired")

	err = ValidateExpiry("12", "23", now)
	assert.EqualError(t, err, "Card has expired")

	err = ValidateExpiry("01", "2045", now)
	assert.EqualError(t, err, "Expiry date too far in the future")

	err = ValidateExpiry("01", "xx", now)
	assert.EqualError(t, err, "Invalid expiry date format (use MM/YY)")
}

func TestValidateCVV(t *testing.T) {
	assert.NoError(t, ValidateCVV("123", CardTypeVisa))
	assert.NoError(t, ValidateCVV("1234", CardTypeAmex))

	err := ValidateCVV("1234", CardTypeVisa)
	assert.EqualError(t, err, "CVV must be 3 digits")

	err = ValidateCVV("123", CardTypeAmex)
	assert.EqualError(t, err, "American Express cards require a 4-digit CVV")

	err = ValidateCVV("12a", CardTypeVisa)
	assert.EqualError(t, err, "CVV can only contain numbers")
}

func TestValidateCardHolder(t *testing.T) {
	assert.NoError(t, ValidateCardHolder("Jordan Green"))
	assert.Error(t, ValidateCardHolder("Jordan G. Green"))
	assert.Error(t, ValidateCardHolder("J0rdan"))
	assert.Error(t, ValidateCardHolder(""))
}

func TestSplitExpiry(t *testing.T) {
	month, year, err := SplitExpiry("09/27")
	require.NoError(t, err)
	assert.Equal(t, "09", month)
	assert.Equal(t, "27", year)

	_, _, err = SplitExpiry("0927")
	assert.EqualError(t, err, "Invalid expiry date format (use MM/YY)")

	_, _, err = SplitExpiry("09/")
	assert.EqualError(t, err, "Invalid expiry date format (use MM/YY)")
}

func TestNormalizeExpiryYear(t *testing.T) {
	assert.Equal(t, "2027", NormalizeExpiryYear("27"))
	assert.Equal(t, "2027", NormalizeExpiryYear("2027"))
}

func TestMaskedPresentation(t *testing.T) {
	pm := &PaymentMethod{
		LastFour:    "4242",
		ExpiryMonth: "09",
		ExpiryYear:  "2027",
		CardType:    CardTypeVisa,
	}
	assert.Equal(t, "**** **** **** 4242", pm.MaskedCardNumber())
	assert.Equal(t, "09/27", pm.FormattedExpiry())
	assert.Equal(t, "/images/card-logos/visa.svg", pm.CardLogo())

	unknown := &PaymentMethod{CardType: "somethingelse"}
	assert.Equal(t, "/images/card-logos/credit-card.svg", unknown.CardLogo())
}
