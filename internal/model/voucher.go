package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountMode tells how a voucher reduces the subtotal.
type DiscountMode string

const (
	DiscountPercentage DiscountMode = "PERCENTAGE"
	DiscountFixed      DiscountMode = "FIXED"
	// DiscountInvalid marks a voucher carrying neither discount field.
	DiscountInvalid DiscountMode = "INVALID"
)

// Voucher is a discount code.  Exactly one of DiscountAmount and
// DiscountPercentage is expected to be present; a record carrying both is
// treated as a percentage voucher.
//
// Fields:
//
//	DiscountAmount     – fixed reduction in VND.
//	DiscountPercentage – reduction as a percentage of the subtotal (0–100).
//	DiscountMax        – optional cap applied to percentage discounts only.
//	ExpiryDate         – the voucher is usable strictly before this instant.
type Voucher struct {
	ID                 uint64           `json:"id"`
	Code               string           `json:"code"`
	DiscountAmount     *int64           `json:"discountAmount,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage,omitempty"`
	DiscountMax        *int64           `json:"discountMax,omitempty"`
	ExpiryDate         Timestamp        `json:"expiryDate"`
	Active             bool             `json:"active"`
}

// Mode classifies the voucher.  Percentage takes precedence when both
// discount fields are present.
func (v Voucher) Mode() DiscountMode {
	switch {
	case v.DiscountPercentage != nil:
		return DiscountPercentage
	case v.DiscountAmount != nil:
		return DiscountFixed
	}
	return DiscountInvalid
}

// Ambiguous reports whether both discount fields are present.
func (v Voucher) Ambiguous() bool {
	return v.DiscountPercentage != nil && v.DiscountAmount != nil
}

// Expired reports whether the voucher can no longer be used at now.
func (v Voucher) Expired(now time.Time) bool {
	return !now.Before(v.ExpiryDate.Time)
}

// Usable reports whether the voucher may be applied at now.
func (v Voucher) Usable(now time.Time) bool {
	return v.Active && !v.Expired(now) && v.Mode() != DiscountInvalid
}
