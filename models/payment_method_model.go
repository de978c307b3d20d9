package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/UnderratedBeast/UniqueFabric-Backend/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CardTypeVisa       = "visa"
	CardTypeMastercard = "mastercard"
	CardTypeAmex       = "amex"
	CardTypeDiscover   = "discover"
	CardTypeUnknown    = "unknown"
)

// PaymentMethodLimit caps saved cards per user.
const PaymentMethodLimit = 5

// PaymentMethod stores tokenized card metadata only. The full number and CVV
// never reach persistence.
type PaymentMethod struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	User        primitive.ObjectID `json:"user" bson:"user"`
	LastFour    string             `json:"lastFour" bson:"lastFour"`
	CardHolder  string             `json:"cardHolder" bson:"cardHolder"`
	ExpiryMonth string             `json:"expiryMonth" bson:"expiryMonth"`
	ExpiryYear  string             `json:"expiryYear" bson:"expiryYear"`
	CardType    string             `json:"cardType" bson:"cardType"`
	IsDefault   bool               `json:"isDefault" bson:"isDefault"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (pm *PaymentMethod) MaskedCardNumber() string {
	return "**** **** **** " + pm.LastFour
}

func (pm *PaymentMethod) FormattedExpiry() string {
	if len(pm.ExpiryYear) < 2 {
		return "••/••"
	}
	return pm.ExpiryMonth + "/" + pm.ExpiryYear[len(pm.ExpiryYear)-2:]
}

var cardLogos = map[string]string{
	CardTypeVisa:       "/images/card-logos/visa.svg",
	CardTypeMastercard: "/images/card-logos/mastercard.svg",
	CardTypeAmex:       "/images/card-logos/amex.svg",
	CardTypeDiscover:   "/images/card-logos/discover.svg",
	CardTypeUnknown:    "/images/card-logos/credit-card.svg",
}

func (pm *PaymentMethod) CardLogo() string {
	if logo, ok := cardLogos[pm.CardType]; ok {
		return logo
	}
	return cardLogos[CardTypeUnknown]
}

var (
	nonDigits       = regexp.MustCompile(`\D`)
	digitsOnly      = regexp.MustCompile(`^\d+$`)
	expiryMonthRe   = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	cardHolderRe    = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	discoverSeries6 = regexp.MustCompile(`^6(?:44|45|46|47|48|49|5)`)
)

// DetectCardType classifies a card number by its leading digits.
func DetectCardType(number string) string {
	cleaned := nonDigits.ReplaceAllString(number, "")
	if cleaned == "" {
		return CardTypeUnknown
	}

	switch {
	case strings.HasPrefix(cleaned, "4"):
		return CardTypeVisa
	case strings.HasPrefix(cleaned, "34"), strings.HasPrefix(cleaned, "37"):
		return CardTypeAmex
	case strings.HasPrefix(cleaned, "6011"), discoverSeries6.MatchString(cleaned):
		return CardTypeDiscover
	}

	// Mastercard: 51-55, or the 2221-2720 BIN expansion range.
	if len(cleaned) >= 2 {
		if p2, err := strconv.Atoi(cleaned[:2]); err == nil && p2 >= 51 && p2 <= 55 {
			return CardTypeMastercard
		}
	}
	if len(cleaned) >= 4 {
		if p4, err := strconv.Atoi(cleaned[:4]); err == nil && p4 >= 2221 && p4 <= 2720 {
			return CardTypeMastercard
		}
	}

	// Discover: 622126-622925.
	if len(cleaned) >= 6 {
		if p6, err := strconv.Atoi(cleaned[:6]); err == nil && p6 >= 622126 && p6 <= 622925 {
			return CardTypeDiscover
		}
	}

	return CardTypeUnknown
}

// CleanCardNumber strips separators and validates the digit count.
func CleanCardNumber(cardNumber string) (string, error) {
	cleaned := nonDigits.ReplaceAllString(cardNumber, "")
	if cleaned == "" || !digitsOnly.MatchString(cleaned) {
		return "", apperrors.New(apperrors.KindInvalidInput, "Card number can only contain numbers")
	}
	if len(cleaned) < 13 || len(cleaned) > 19 {
		return "", apperrors.New(apperrors.KindInvalidInput, "Card number must be between 13 and 19 digits")
	}
	return cleaned, nil
}

// ValidateExpiry checks an MM and YY/YYYY pair against now. Cards may not be
// expired nor dated more than 20 years out.
func ValidateExpiry(month, year string, now time.Time) error {
	if !expiryMonthRe.MatchString(month) {
		return apperrors.New(apperrors.KindInvalidInput, "Month must be between 01 and 12")
	}

	expiryYear, err := strconv.Atoi(year)
	if err != nil {
		return apperrors.New(apperrors.KindInvalidInput, "Invalid expiry date format (use MM/YY)")
	}
	if len(year) == 2 {
		expiryYear += 2000
	}
	expiryMonth, _ := strconv.Atoi(month)

	currentYear := now.Year()
	currentMonth := int(now.Month())

	if expiryYear < currentYear || (expiryYear == currentYear && expiryMonth < currentMonth) {
		return apperrors.New(apperrors.KindInvalidInput, "Card has expired")
	}
	if expiryYear > currentYear+20 {
		return apperrors.New(apperrors.KindInvalidInput, "Expiry date too far in the future")
	}
	return nil
}

// ValidateCVV enforces digits only, with length 4 for amex and 3 otherwise.
func ValidateCVV(cvv, cardType string) error {
	if !digitsOnly.MatchString(cvv) {
		return apperrors.New(apperrors.KindInvalidInput, "CVV can only contain numbers")
	}
	if cardType == CardTypeAmex {
		if len(cvv) != 4 {
			return apperrors.New(apperrors.KindInvalidInput, "American Express cards require a 4-digit CVV")
		}
		return nil
	}
	if len(cvv) != 3 {
		return apperrors.New(apperrors.KindInvalidInput, "CVV must be 3 digits")
	}
	return nil
}

// ValidateCardHolder allows letters and spaces only.
func ValidateCardHolder(name string) error {
	if !cardHolderRe.MatchString(strings.TrimSpace(name)) {
		return apperrors.New(apperrors.KindInvalidInput, "Card holder name can only contain letters and spaces")
	}
	return nil
}

// SplitExpiry parses "MM/YY" or "MM/YYYY".
func SplitExpiry(expiryDate string) (month, year string, err error) {
	parts := strings.Split(expiryDate, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", apperrors.New(apperrors.KindInvalidInput, "Invalid expiry date format (use MM/YY)")
	}
	return parts[0], parts[1], nil
}

// NormalizeExpiryYear widens a 2-digit year to 4 digits.
func NormalizeExpiryYear(year string) string {
	if len(year) == 2 {
		return fmt.Sprintf("20%s", year)
	}
	return year
}
