package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// SeatType is the tariff category of a seat.  Every seat belongs to exactly
// one type and the price of the type is what a selected seat costs.
type SeatType string

const (
	SeatTypeNormal SeatType = "NORMAL"
	SeatTypeVIP    SeatType = "VIP"
	SeatTypeCouple SeatType = "COUPLE"
)

// Valid reports whether t is one of the known seat types.
func (t SeatType) Valid() bool {
	switch t {
	case SeatTypeNormal, SeatTypeVIP, SeatTypeCouple:
		return true
	}
	return false
}

// SeatTariff binds a seat type to its current price in whole VND.  At most
// one tariff exists per seat type and the type never changes after creation.
type SeatTariff struct {
	ID       uint64   `json:"id"`       // seat-price id on the backend
	SeatType SeatType `json:"seatType"` // NORMAL, VIP or COUPLE
	Price    int64    `json:"price"`    // price in VND, always > 0
}

// SeatNumber is the number of a seat within its row.  The backend sends it
// either as a JSON number or as a string, so both forms are accepted.
type SeatNumber string

// UnmarshalJSON accepts 7 as well as "7".
func (n *SeatNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = SeatNumber(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = SeatNumber(num.String())
	return nil
}

// Int returns the numeric value of the seat number, or 0 when it is not numeric.
func (n SeatNumber) Int() int {
	v, err := strconv.Atoi(string(n))
	if err != nil {
		return 0
	}
	return v
}

// Seat is a physical seat of an auditorium as seen for one showtime.
//
// Active mirrors the backend "status" flag: an inactive seat is out of
// service.  Booked is only meaningful on seat maps fetched for a showtime.
type Seat struct {
	ID           uint64     `json:"id"`
	RowChart     string     `json:"rowChart"`
	SeatNumber   SeatNumber `json:"seatNumber"`
	Active       bool       `json:"status"`
	Booked       bool       `json:"booked"`
	AuditoriumID uint64     `json:"auditoriumId"`
	SeatType     SeatTariff `json:"seatType"`
}

// Label renders the human readable seat name, e.g. "C7".
func (s Seat) Label() string { return s.RowChart + string(s.SeatNumber) }

// Selectable reports whether a customer may add the seat to a draft.
func (s Seat) Selectable() bool { return s.Active && !s.Booked }
