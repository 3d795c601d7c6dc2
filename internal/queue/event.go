// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingSubmittedQueue is the durable queue carrying BookingSubmittedEvent.
const BookingSubmittedQueue = "booking.submitted"

// BookingSubmittedEvent is published after the backend accepted a draft and
// created a booking.  It contains enough information for downstream
// consumers to log, notify or trigger analytics without calling the backend.
type BookingSubmittedEvent struct {
	BookingID      uint64   `json:"booking_id"`
	DraftID        string   `json:"draft_id"`
	IdempotencyKey string   `json:"idempotency_key"`
	UserID         string   `json:"user_id"`
	ShowtimeID     uint64   `json:"showtime_id"`
	MovieID        uint64   `json:"movie_id"`
	SeatIDs        []uint64 `json:"seat_ids"`
	FoodLines      int      `json:"food_lines"`
	VoucherCode    string   `json:"voucher_code,omitempty"`
	QuotedTotal    int64    `json:"quoted_total_vnd"`
	BackendTotal   string   `json:"backend_total"`
	Status         string   `json:"status"`
	SubmittedAt    string   `json:"submitted_at"`
}
