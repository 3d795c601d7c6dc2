package validate

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-checkout/internal/apperror"
	"github.com/iliyamo/cinema-checkout/internal/model"
)

var now = time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)

func int64p(v int64) *int64 { return &v }

func pct(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func voucherReq() model.VoucherRequest {
	return model.VoucherRequest{
		Code:       "SPRING",
		ExpiryDate: model.Timestamp{Time: now.Add(24 * time.Hour)},
		Active:     true,
	}
}

func TestVoucherDiscountExclusivity(t *testing.T) {
	v := New()

	neither := voucherReq()
	assert.ErrorIs(t, v.Voucher(neither, now, true), apperror.ErrVoucherDiscountMode)

	both := voucherReq()
	both.DiscountAmount = int64p(10000)
	both.DiscountPercentage = pct(10)
	assert.ErrorIs(t, v.Voucher(both, now, true), apperror.ErrVoucherDiscountMode)

	fixed := voucherReq()
	fixed.DiscountAmount = int64p(0)
	assert.NoError(t, v.Voucher(fixed, now, true), "zero amount is a degenerate but valid voucher")

	percent := voucherReq()
	percent.DiscountPercentage = pct(15)
	percent.DiscountMax = int64p(30000)
	assert.NoError(t, v.Voucher(percent, now, true))
}

func TestVoucherPercentageRange(t *testing.T) {
	v := New()
	req := voucherReq()
	req.DiscountPercentage = pct(101)
	err := v.Voucher(req, now, true)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	req.DiscountPercentage = pct(-1)
	assert.Error(t, v.Voucher(req, now, true))
}

func TestVoucherExpiry(t *testing.T) {
	v := New()
	req := voucherReq()
	req.DiscountAmount = int64p(5000)
	req.ExpiryDate = model.Timestamp{Time: now}

	assert.ErrorIs(t, v.Voucher(req, now, true), apperror.ErrVoucherExpiryPast)
	assert.NoError(t, v.Voucher(req, now, false), "updates may keep a past expiry")
}

func TestVoucherRequiresCode(t *testing.T) {
	req := voucherReq()
	req.Code = ""
	req.DiscountAmount = int64p(5000)
	err := New().Voucher(req, now, true)
	var ve *apperror.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "InvalidField", ve.Code)
	assert.Contains(t, ve.Message, "code")
}

func TestNewTariff(t *testing.T) {
	v := New()
	existing := []model.SeatTariff{{ID: 1, SeatType: model.SeatTypeNormal, Price: 80000}}

	assert.NoError(t, v.NewTariff(model.SeatTariffRequest{SeatType: model.SeatTypeVIP, Price: 120000}, existing))

	err := v.NewTariff(model.SeatTariffRequest{SeatType: model.SeatTypeNormal, Price: 90000}, existing)
	assert.True(t, apperror.IsConflict(err))

	assert.True(t, apperror.IsValidation(v.NewTariff(model.SeatTariffRequest{SeatType: model.SeatTypeVIP, Price: 0}, existing)))
	assert.True(t, apperror.IsValidation(v.NewTariff(model.SeatTariffRequest{SeatType: "BALCONY", Price: 1}, existing)))
}

func TestTariffUpdate(t *testing.T) {
	v := New()
	current := model.SeatTariff{ID: 2, SeatType: model.SeatTypeVIP, Price: 120000}

	assert.NoError(t, v.TariffUpdate(current, model.SeatTariffRequest{Price: 130000}))
	assert.NoError(t, v.TariffUpdate(current, model.SeatTariffRequest{SeatType: model.SeatTypeVIP, Price: 130000}))
	assert.ErrorIs(t, v.TariffUpdate(current, model.SeatTariffRequest{SeatType: model.SeatTypeCouple, Price: 130000}), apperror.ErrTariffTypeImmutable)
	assert.Error(t, v.TariffUpdate(current, model.SeatTariffRequest{Price: -5}))
}

func TestBulkSeats(t *testing.T) {
	v := New()
	ok := model.BulkSeatRequest{AuditoriumID: 3, RowChart: "C", FromSeat: 1, ToSeat: 12, SeatPriceID: 1}
	require.NoError(t, v.BulkSeats(ok))
	assert.Len(t, ok.Expand().SeatNumbers, 12)
	assert.Equal(t, 1, ok.Expand().SeatNumbers[0])
	assert.Equal(t, 12, ok.Expand().SeatNumbers[11])

	equal := ok
	equal.ToSeat = 1
	assert.ErrorIs(t, v.BulkSeats(equal), apperror.ErrInvalidSeatRange)

	lower := ok
	lower.RowChart = "c"
	assert.ErrorIs(t, v.BulkSeats(lower), apperror.ErrInvalidRowLabel)

	double := ok
	double.RowChart = "AB"
	assert.ErrorIs(t, v.BulkSeats(double), apperror.ErrInvalidRowLabel)
}

func TestBulkSeatsUpperBound(t *testing.T) {
	v := New()
	full := model.BulkSeatRequest{AuditoriumID: 3, RowChart: "C", FromSeat: 1, ToSeat: model.MaxSeatsPerRow, SeatPriceID: 1}
	require.NoError(t, v.BulkSeats(full))
	assert.Len(t, full.Expand().SeatNumbers, model.MaxSeatsPerRow)

	huge := full
	huge.ToSeat = math.MaxInt
	err := v.BulkSeats(huge)
	assert.True(t, apperror.IsValidation(err))

	tooFar := full
	tooFar.FromSeat, tooFar.ToSeat = 150, 201
	assert.True(t, apperror.IsValidation(v.BulkSeats(tooFar)))
}

func TestExpandReversedRangeIsEmpty(t *testing.T) {
	r := model.BulkSeatRequest{FromSeat: 9, ToSeat: 2}
	assert.Empty(t, r.Expand().SeatNumbers)
}

func TestRowLabel(t *testing.T) {
	assert.NoError(t, RowLabel("Z"))
	assert.Error(t, RowLabel(""))
	assert.Error(t, RowLabel("1"))
}
