package model

import "github.com/shopspring/decimal"

// BookingStatus is the lifecycle state of a booking on the backend.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// FoodOrderLine is one food item with its quantity.  Quantity is always
// positive; a line reaching zero is removed rather than kept.
type FoodOrderLine struct {
	FoodID   uint64 `json:"foodId"`
	Quantity int    `json:"quantity"`
}

// BookingRequest is the payload submitted to the backend to create a
// booking.  It is an immutable snapshot of a finalized draft.
type BookingRequest struct {
	ShowtimeID uint64          `json:"showtimeId"`
	VoucherID  *uint64         `json:"voucherId,omitempty"`
	SeatIDs    []uint64        `json:"seatId"`
	Orders     []FoodOrderLine `json:"orders"`
}

// BookingTicket is a seat line of a booking.
type BookingTicket struct {
	ID             uint64 `json:"id"`
	Price          int64  `json:"price"`
	SeatName       string `json:"seatName"`
	AuditoriumName string `json:"auditoriumName"`
	Status         string `json:"status"`
}

// OrderedFood is a food line of a booking.
type OrderedFood struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// Booking is the backend record created from a BookingRequest.  Total is
// authoritative once the backend has computed it.
type Booking struct {
	ID           uint64          `json:"id"`
	Total        decimal.Decimal `json:"total"`
	NameMovie    string          `json:"nameMovie"`
	StartTime    Timestamp       `json:"startTime"`
	Status       BookingStatus   `json:"status"`
	Tickets      []BookingTicket `json:"tickets"`
	OrderedFoods []OrderedFood   `json:"orderedFoods"`
	CreatedAt    Timestamp       `json:"createdAt"`
	UpdatedAt    Timestamp       `json:"updatedAt"`
}

// PaymentMethod selects how a booking is paid.
type PaymentMethod string

const (
	PaymentMoMo PaymentMethod = "momo"
	PaymentCash PaymentMethod = "Cash"
)

// PaymentResult is what the backend answers when a payment is initiated.
// PayURL is set for wallet payments the customer must complete externally.
type PaymentResult struct {
	Success bool   `json:"success"`
	PayURL  string `json:"payUrl,omitempty"`
	Message string `json:"message,omitempty"`
}
