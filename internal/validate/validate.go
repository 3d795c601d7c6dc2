// Package validate checks admin and checkout requests before anything is
// sent to the backend.  Field level rules are struct tags evaluated by
// go-playground/validator; rules spanning several fields or needing the
// current time or existing records are written out here.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-checkout/internal/apperror"
	"github.com/iliyamo/cinema-checkout/internal/model"
)

var rowLabelRe = regexp.MustCompile(`^[A-Z]$`)

var hundred = decimal.NewFromInt(100)

// Validator wraps a configured validator.Validate.  It is safe for
// concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the seat specific tags registered.
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("seattype", func(fl validator.FieldLevel) bool {
		return model.SeatType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("rowlabel", func(fl validator.FieldLevel) bool {
		return rowLabelRe.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct runs the tag rules on s and reports the first violation as a
// ValidationError.
func (x *Validator) Struct(s any) error {
	err := x.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.Validation("InvalidRequest", "%v", err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "rowlabel":
		return apperror.ErrInvalidRowLabel
	case "seattype":
		return apperror.Validation("InvalidSeatType", "seatType must be one of NORMAL, VIP, COUPLE")
	}
	return apperror.Validation("InvalidField", "%s failed %s", lowerFirst(fe.Field()), describe(fe))
}

// Voucher checks a voucher create or update request.  The expiry must lie in
// the future only when creating.
func (x *Validator) Voucher(req model.VoucherRequest, now time.Time, creating bool) error {
	if err := x.Struct(req); err != nil {
		return err
	}
	hasAmount := req.DiscountAmount != nil
	hasPct := req.DiscountPercentage != nil
	if hasAmount == hasPct {
		return apperror.ErrVoucherDiscountMode
	}
	if hasPct {
		p := *req.DiscountPercentage
		if p.IsNegative() || p.GreaterThan(hundred) {
			return apperror.Validation("InvalidField", "discountPercentage must be between 0 and 100")
		}
	}
	if req.ExpiryDate.IsZero() {
		return apperror.Validation("InvalidField", "expiryDate is required")
	}
	if creating && !req.ExpiryDate.After(now) {
		return apperror.ErrVoucherExpiryPast
	}
	return nil
}

// NewTariff checks a tariff creation against the tariffs that already
// exist.  A second tariff for the same seat type is a conflict.
func (x *Validator) NewTariff(req model.SeatTariffRequest, existing []model.SeatTariff) error {
	if err := x.Struct(req); err != nil {
		return err
	}
	for _, t := range existing {
		if t.SeatType == req.SeatType {
			return &apperror.ConflictError{Message: fmt.Sprintf("a tariff for %s already exists", req.SeatType)}
		}
	}
	return nil
}

// TariffUpdate checks a price update.  The request may omit the seat type;
// when present it must match the stored one.
func (x *Validator) TariffUpdate(current model.SeatTariff, req model.SeatTariffRequest) error {
	if req.SeatType != "" && req.SeatType != current.SeatType {
		return apperror.ErrTariffTypeImmutable
	}
	req.SeatType = current.SeatType
	return x.Struct(req)
}

// BulkSeats checks a row creation request.
func (x *Validator) BulkSeats(req model.BulkSeatRequest) error {
	if err := x.Struct(req); err != nil {
		return err
	}
	if req.FromSeat >= req.ToSeat {
		return apperror.ErrInvalidSeatRange
	}
	if req.ToSeat-req.FromSeat+1 > model.MaxSeatsPerRow {
		return apperror.Validation("InvalidSeatRange", "a row holds at most %d seats", model.MaxSeatsPerRow)
	}
	return nil
}

// RowLabel checks a single row label, as used by row deletion.
func RowLabel(row string) error {
	if !rowLabelRe.MatchString(row) {
		return apperror.ErrInvalidRowLabel
	}
	return nil
}

func describe(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
