package entities

import (
	"errors"
	"regexp"
	"strings"
)

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentUPI  PaymentMethod = "upi"
	PaymentCard PaymentMethod = "card"
)

var (
	ErrUnknownPayment = errors.New("Choose cod, upi or card as payment method.")
	ErrInvalidUPI     = errors.New("Invalid UPI format. Payment failed (demo).")
	ErrInvalidCard    = errors.New("Invalid card number. Payment failed (demo).")
	ErrInvalidExpiry  = errors.New("Invalid expiry.")
	ErrInvalidCVV     = errors.New("Invalid CVV.")
)

var (
	upiPattern    = regexp.MustCompile(`^[\w.\-]{2,}@[a-zA-Z]{2,}$`)
	cardPattern   = regexp.MustCompile(`^\d{12,19}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])\/?([0-9]{2})$`)
	cvvPattern    = regexp.MustCompile(`^\d{3,4}$`)
)

// Payment holds the fields of whichever method was chosen. Nothing is
// charged; the details are only checked for shape.
type Payment struct {
	Method     PaymentMethod `json:"method"`
	UPI        string        `json:"upi,omitempty"`
	CardNumber string        `json:"cardNumber,omitempty"`
	Expiry     string        `json:"expiry,omitempty"`
	CVV        string        `json:"cvv,omitempty"`
}

// Validate checks the fields required by the chosen method. Spaces in card
// numbers are ignored.
func (p Payment) Validate() error {
	switch p.Method {
	case PaymentCOD:
		return nil
	case PaymentUPI:
		if !upiPattern.MatchString(strings.TrimSpace(p.UPI)) {
			return ErrInvalidUPI
		}
		return nil
	case PaymentCard:
		if !cardPattern.MatchString(strings.ReplaceAll(p.CardNumber, " ", "")) {
			return ErrInvalidCard
		}
		if !expiryPattern.MatchString(strings.TrimSpace(p.Expiry)) {
			return ErrInvalidExpiry
		}
		if !cvvPattern.MatchString(strings.TrimSpace(p.CVV)) {
			return ErrInvalidCVV
		}
		return nil
	default:
		return ErrUnknownPayment
	}
}
