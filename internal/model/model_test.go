package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatNumberAcceptsNumberAndString(t *testing.T) {
	var seats []Seat
	body := `[{"id":1,"rowChart":"A","seatNumber":7,"status":true},{"id":2,"rowChart":"B","seatNumber":"12","status":false}]`
	require.NoError(t, json.Unmarshal([]byte(body), &seats))

	assert.Equal(t, "A7", seats[0].Label())
	assert.Equal(t, 7, seats[0].SeatNumber.Int())
	assert.Equal(t, "B12", seats[1].Label())
	assert.False(t, seats[1].Selectable())
}

func TestSeatSelectable(t *testing.T) {
	assert.True(t, Seat{Active: true}.Selectable())
	assert.False(t, Seat{Active: true, Booked: true}.Selectable())
	assert.False(t, Seat{Active: false}.Selectable())
}

func TestTimestampLayouts(t *testing.T) {
	cases := map[string]time.Time{
		`"2030-01-02T03:04:05Z"`:       time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
		`"2030-01-02T10:04:05+07:00"`:  time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
		`"2030-01-02T03:04:05"`:        time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
		`"2030-01-02T03:04:05.123456"`: time.Date(2030, 1, 2, 3, 4, 5, 123456000, time.UTC),
	}
	for in, want := range cases {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(in), &ts), in)
		assert.True(t, want.Equal(ts.Time), in)
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestVoucherMode(t *testing.T) {
	amount := int64(20000)
	pct := decimal.NewFromInt(10)

	assert.Equal(t, DiscountFixed, Voucher{DiscountAmount: &amount}.Mode())
	assert.Equal(t, DiscountPercentage, Voucher{DiscountPercentage: &pct}.Mode())
	assert.Equal(t, DiscountInvalid, Voucher{}.Mode())

	both := Voucher{DiscountAmount: &amount, DiscountPercentage: &pct}
	assert.Equal(t, DiscountPercentage, both.Mode())
	assert.True(t, both.Ambiguous())
}

func TestVoucherUsable(t *testing.T) {
	now := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	amount := int64(1000)
	v := Voucher{Active: true, DiscountAmount: &amount, ExpiryDate: Timestamp{now.Add(time.Hour)}}
	assert.True(t, v.Usable(now))

	v.ExpiryDate = Timestamp{now}
	assert.False(t, v.Usable(now), "expiry instant itself is no longer usable")

	v.ExpiryDate = Timestamp{now.Add(time.Hour)}
	v.Active = false
	assert.False(t, v.Usable(now))

	v.Active = true
	v.DiscountAmount = nil
	assert.False(t, v.Usable(now))
}

func TestCatalogIndexes(t *testing.T) {
	c := ShowtimeCatalog{
		Seats:    []Seat{{ID: 1}, {ID: 2}},
		Foods:    []Food{{ID: 9, Price: 50000}},
		Vouchers: []Voucher{{ID: 4, Code: "SALE"}},
	}
	assert.Len(t, c.SeatIndex(), 2)
	assert.Equal(t, int64(50000), c.FoodIndex()[9].Price)

	v, ok := c.Voucher(4)
	assert.True(t, ok)
	assert.Equal(t, "SALE", v.Code)
	_, ok = c.Voucher(5)
	assert.False(t, ok)
}

func TestVoucherRequestSendsPercentageAsNumber(t *testing.T) {
	pct := decimal.RequireFromString("12.5")
	req := VoucherRequest{Code: "SPRING", DiscountPercentage: &pct, Active: true}

	b, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"discountPercentage":12.5`)
	assert.Contains(t, string(b), `"code":"SPRING"`)
	assert.NotContains(t, string(b), "discountAmount")

	fixed := VoucherRequest{Code: "FIX", DiscountAmount: new(int64)}
	b, err = json.Marshal(fixed)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"discountAmount":0`)
	assert.NotContains(t, string(b), "discountPercentage")
}
