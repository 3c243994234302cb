package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/selvawasi/selvawasi-api/internal/model"
	"github.com/selvawasi/selvawasi-api/internal/queue"
	"github.com/selvawasi/selvawasi-api/internal/repository"
)

// Reservation errors.
var (
	ErrRestaurantNotFound  = errors.New("Restaurante no encontrado")
	ErrReservationNotFound = errors.New("Reservación no encontrada")
	ErrInvalidPax          = errors.New("El número de personas debe ser mayor a cero")
	ErrInvalidStatus       = errors.New("Estado inválido, use CONFIRMED o REJECTED")
	ErrInvalidTransition   = errors.New("Transición de estado no permitida")
)

// reservationTransitions is the approval workflow.  A decided reservation
// can be re-decided but never returns to PENDING_APPROVAL.
var reservationTransitions = map[string][]string{
	model.ReservationPendingApproval: {model.ReservationConfirmed, model.ReservationRejected},
	model.ReservationConfirmed:       {model.ReservationConfirmed, model.ReservationRejected},
	model.ReservationRejected:        {model.ReservationRejected, model.ReservationConfirmed},
}

// CanTransition reports whether a reservation may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, next := range reservationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ReservationInput is a traveller's table request.  Status is ignored.
type ReservationInput struct {
	UserID        uint64
	RestaurantID  uint64
	Pax           int
	RequestedDate time.Time
	Notes         string
	Status        string
}

// ReservationService runs the approval workflow.
type ReservationService struct {
	reservations *repository.ReservationRepo
	restaurants  *repository.RestaurantRepo
	events       EventPublisher
}

func NewReservationService(rr *repository.ReservationRepo, r *repository.RestaurantRepo, events EventPublisher) *ReservationService {
	return &ReservationService{reservations: rr, restaurants: r, events: events}
}

// Create stores a reservation in PENDING_APPROVAL.
func (s *ReservationService) Create(ctx context.Context, in ReservationInput) (*model.RestaurantReservation, error) {
	if in.Pax <= 0 {
		return nil, ErrInvalidPax
	}
	if _, err := s.restaurants.GetByID(ctx, in.RestaurantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	res := &model.RestaurantReservation{
		UserID:        in.UserID,
		RestaurantID:  in.RestaurantID,
		Pax:           in.Pax,
		RequestedDate: in.RequestedDate.UTC(),
		Notes:         strings.TrimSpace(in.Notes),
		Status:        model.ReservationPendingApproval,
	}
	if err := s.reservations.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateStatus confirms or rejects a reservation.  Only an admin or the
// owner of the restaurant may decide.  Repeating the current status is
// accepted and leaves the row unchanged.
func (s *ReservationService) UpdateStatus(ctx context.Context, id uint64, target string, actorID uint64, isAdmin bool) (*repository.ReservationView, error) {
	target = strings.ToUpper(strings.TrimSpace(target))
	if target != model.ReservationConfirmed && target != model.ReservationRejected {
		return nil, ErrInvalidStatus
	}
	res, err := s.reservations.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	if !isAdmin && res.OwnerID != actorID {
		return nil, repository.ErrForbidden
	}
	if !CanTransition(res.Status, target) {
		return nil, ErrInvalidTransition
	}
	if res.Status == target {
		return res, nil
	}
	from := res.Status
	if err := s.reservations.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}
	updated, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, queue.ReservationStatusChangedQueue, queue.ReservationStatusChangedEvent{
		ReservationID: updated.ID,
		RestaurantID:  updated.RestaurantID,
		UserID:        updated.UserID,
		From:          from,
		To:            target,
		ChangedBy:     actorID,
		ChangedAt:     updated.UpdatedAt.Format(time.RFC3339),
	})
	return updated, nil
}
