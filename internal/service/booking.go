// Package service holds the domain logic that spans repositories: seat
// allocation for bookings, the reservation approval workflow, the fixture
// seeder and event publishing.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/selvawasi/selvawasi-api/internal/database"
	"github.com/selvawasi/selvawasi-api/internal/model"
	"github.com/selvawasi/selvawasi-api/internal/queue"
	"github.com/selvawasi/selvawasi-api/internal/repository"
)

// Booking errors.  Messages are shown to travellers as-is.
var (
	ErrBookingTarget      = errors.New("Debe indicar un horario o una experiencia, no ambos")
	ErrScheduleNotFound   = errors.New("Horario no encontrado")
	ErrExperienceNotFound = errors.New("Experiencia no encontrada")
	ErrNoSeatsAvailable   = errors.New("El barco no tiene asientos disponibles")
	ErrSeatConflict       = errors.New("No se pudo asignar un asiento, intente nuevamente")
	ErrBookingNotFound    = errors.New("Reserva no encontrada")
)

// maxSeatAttempts bounds the retries after a duplicate seat insert.
const maxSeatAttempts = 3

// BookingInput is what a traveller submits.  Status is accepted for
// compatibility and ignored: new bookings are always CONFIRMED.
type BookingInput struct {
	UserID            uint64
	ScheduleID        *uint64
	ExperienceID      *uint64
	SeatType          string
	TotalPriceCents   int64
	PassengerName     string
	PassengerDocument string
	PassengerPhone    *string
	Status            string
}

// BookingService allocates seats and records bookings.
type BookingService struct {
	bookings    *repository.BookingRepo
	experiences *repository.ExperienceRepo
	events      EventPublisher
}

func NewBookingService(b *repository.BookingRepo, e *repository.ExperienceRepo, events EventPublisher) *BookingService {
	return &BookingService{bookings: b, experiences: e, events: events}
}

// Create books a seat on a schedule or a place on an experience.
//
// Schedule bookings run the capacity check and the insert in one
// transaction holding the schedule row lock, so concurrent requests cannot
// oversell a boat.  The unique (schedule_id, seat_number) index catches
// anything that slips through and the attempt is retried.
func (s *BookingService) Create(ctx context.Context, in BookingInput) (*model.Booking, error) {
	if (in.ScheduleID == nil) == (in.ExperienceID == nil) {
		return nil, ErrBookingTarget
	}
	if in.Status != "" && in.Status != model.BookingConfirmed {
		logrus.WithField("status", in.Status).Debug("booking: ignoring caller supplied status")
	}

	var (
		b   *model.Booking
		err error
	)
	if in.ScheduleID != nil {
		for attempt := 1; attempt <= maxSeatAttempts; attempt++ {
			b, err = s.allocateSeat(ctx, in)
			if err == nil || !database.IsDuplicateKey(err) {
				break
			}
			logrus.WithFields(logrus.Fields{"schedule_id": *in.ScheduleID, "attempt": attempt}).
				Warn("booking: seat collision, retrying")
			err = ErrSeatConflict
		}
	} else {
		b, err = s.bookExperience(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, queue.BookingConfirmedQueue, queue.BookingConfirmedEvent{
		BookingID:       b.ID,
		UserID:          b.UserID,
		ScheduleID:      b.ScheduleID,
		ExperienceID:    b.ExperienceID,
		SeatNumber:      b.SeatNumber,
		TicketCode:      b.TicketCode,
		PassengerName:   b.PassengerName,
		TotalPriceCents: b.TotalPriceCents,
		ConfirmedAt:     b.CreatedAt.Format(time.RFC3339),
	})
	return b, nil
}

// allocateSeat runs one attempt of the schedule booking transaction.
func (s *BookingService) allocateSeat(ctx context.Context, in BookingInput) (*model.Booking, error) {
	tx, err := s.bookings.DB().BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	capacity, err := s.bookings.CapacityForUpdateTx(ctx, tx, *in.ScheduleID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	taken, err := s.bookings.ConfirmedSeatsTx(ctx, tx, *in.ScheduleID)
	if err != nil {
		return nil, err
	}
	if len(taken) >= capacity {
		return nil, ErrNoSeatsAvailable
	}
	seat, ok := lowestFreeSeat(taken, capacity)
	if !ok {
		return nil, ErrNoSeatsAvailable
	}

	total := in.TotalPriceCents
	if total <= 0 {
		seatType := strings.ToUpper(strings.TrimSpace(in.SeatType))
		if seatType == "" {
			seatType = model.DefaultSeatType
		}
		if total, err = s.bookings.PriceForSeatTx(ctx, tx, *in.ScheduleID, seatType); err != nil {
			return nil, err
		}
	}

	b := newBooking(in, total)
	b.ScheduleID = in.ScheduleID
	b.SeatNumber = &seat
	if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return b, nil
}

func (s *BookingService) bookExperience(ctx context.Context, in BookingInput) (*model.Booking, error) {
	exp, err := s.experiences.GetByID(ctx, *in.ExperienceID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrExperienceNotFound
	}
	if err != nil {
		return nil, err
	}
	total := in.TotalPriceCents
	if total <= 0 {
		total = exp.PriceCents
	}
	b := newBooking(in, total)
	b.ExperienceID = in.ExperienceID
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func newBooking(in BookingInput, total int64) *model.Booking {
	return &model.Booking{
		UserID:            in.UserID,
		Status:            model.BookingConfirmed,
		TotalPriceCents:   total,
		PassengerName:     strings.TrimSpace(in.PassengerName),
		PassengerDocument: strings.TrimSpace(in.PassengerDocument),
		PassengerPhone:    in.PassengerPhone,
		TicketCode:        uuid.NewString(),
	}
}

// lowestFreeSeat returns the smallest seat in 1..capacity not in taken.
func lowestFreeSeat(taken []string, capacity int) (string, bool) {
	used := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		used[t] = struct{}{}
	}
	for n := 1; n <= capacity; n++ {
		seat := strconv.Itoa(n)
		if _, ok := used[seat]; !ok {
			return seat, true
		}
	}
	return "", false
}

// Cancel cancels a booking owned by userID, or any booking when isAdmin.
// The seat is released.  Cancelling an already cancelled booking is a
// no-op.
func (s *BookingService) Cancel(ctx context.Context, id, userID uint64, isAdmin bool) (*repository.BookingView, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.UserID != userID {
		return nil, repository.ErrForbidden
	}
	if b.Status != model.BookingCancelled {
		if err := s.bookings.Cancel(ctx, id); err != nil {
			return nil, err
		}
	}
	return s.bookings.GetByID(ctx, id)
}
