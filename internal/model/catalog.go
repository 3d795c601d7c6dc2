package model

// Food is a concession item that can be added to a booking.
type Food struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Price  int64  `json:"price"` // VND per unit
	ImgURL string `json:"imgUrl,omitempty"`
}

// Movie carries the movie attributes the checkout flow displays.
type Movie struct {
	ID              uint64 `json:"id"`
	Title           string `json:"title"`
	PosterURL       string `json:"posterUrl,omitempty"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
}

// Showtime is a screening of a movie in an auditorium.
type Showtime struct {
	ID           uint64    `json:"id"`
	MovieID      uint64    `json:"movieId"`
	AuditoriumID uint64    `json:"auditoriumId"`
	BasePrice    int64     `json:"basePrice"`
	StartTime    Timestamp `json:"startTime"`
	Movie        *Movie    `json:"movie,omitempty"`
}

// ShowtimeCatalog bundles everything needed to build and price a draft for
// one showtime: its seat map, the food menu and the voucher list.
type ShowtimeCatalog struct {
	Showtime Showtime  `json:"showtime"`
	Movie    Movie     `json:"movie"`
	Seats    []Seat    `json:"seats"`
	Foods    []Food    `json:"foods"`
	Vouchers []Voucher `json:"vouchers"`
}

// SeatIndex returns the seats keyed by id.
func (c ShowtimeCatalog) SeatIndex() map[uint64]Seat {
	idx := make(map[uint64]Seat, len(c.Seats))
	for _, s := range c.Seats {
		idx[s.ID] = s
	}
	return idx
}

// FoodIndex returns the foods keyed by id.
func (c ShowtimeCatalog) FoodIndex() map[uint64]Food {
	idx := make(map[uint64]Food, len(c.Foods))
	for _, f := range c.Foods {
		idx[f.ID] = f
	}
	return idx
}

// Voucher looks up a voucher by id.
func (c ShowtimeCatalog) Voucher(id uint64) (Voucher, bool) {
	for _, v := range c.Vouchers {
		if v.ID == id {
			return v, true
		}
	}
	return Voucher{}, false
}
