package queue

// Queue names.  Events are published on the default exchange with the
// queue name as routing key.
const (
	BookingConfirmedQueue         = "booking.confirmed"
	ReservationStatusChangedQueue = "reservation.status_changed"
)

// Queues lists every queue the consumer listens on.
var Queues = []string{BookingConfirmedQueue, ReservationStatusChangedQueue}

// BookingConfirmedEvent is emitted after a booking commits.
type BookingConfirmedEvent struct {
	BookingID       uint64  `json:"booking_id"`
	UserID          uint64  `json:"user_id"`
	ScheduleID      *uint64 `json:"schedule_id,omitempty"`
	ExperienceID    *uint64 `json:"experience_id,omitempty"`
	SeatNumber      *string `json:"seat_number,omitempty"`
	TicketCode      string  `json:"ticket_code"`
	PassengerName   string  `json:"passenger_name"`
	TotalPriceCents int64   `json:"total_price_cents"`
	ConfirmedAt     string  `json:"confirmed_at"`
}

// ReservationStatusChangedEvent is emitted when an owner or admin confirms
// or rejects a table reservation.
type ReservationStatusChangedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	RestaurantID  uint64 `json:"restaurant_id"`
	UserID        uint64 `json:"user_id"`
	From          string `json:"from"`
	To            string `json:"to"`
	ChangedBy     uint64 `json:"changed_by"`
	ChangedAt     string `json:"changed_at"`
}
