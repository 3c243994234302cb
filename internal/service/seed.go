package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/selvawasi/selvawasi-api/internal/model"
	"github.com/selvawasi/selvawasi-api/internal/repository"
	"github.com/selvawasi/selvawasi-api/internal/utils"
)

// SeedPassword is the password of every fixture account.
const SeedPassword = "selvawasi123"

// Repos bundles the repositories the seeder writes to.
type Repos struct {
	Users       *repository.UserRepo
	Operators   *repository.OperatorRepo
	Boats       *repository.BoatRepo
	Routes      *repository.RouteRepo
	Schedules   *repository.ScheduleRepo
	Restaurants *repository.RestaurantRepo
	Experiences *repository.ExperienceRepo
}

// SeedResult reports the fixture ids so a developer can start testing.
type SeedResult struct {
	AdminID       uint64   `json:"admin_id"`
	OperatorID    uint64   `json:"operator_id"`
	BoatID        uint64   `json:"boat_id"`
	RouteID       uint64   `json:"route_id"`
	ScheduleIDs   []uint64 `json:"schedule_ids"`
	RestaurantID  uint64   `json:"restaurant_id"`
	ExperienceIDs []uint64 `json:"experience_ids"`
	Password      string   `json:"password"`
}

// Seeder upserts demo fixtures keyed on natural keys (emails, names,
// titles) so running it repeatedly never duplicates rows.
type Seeder struct {
	repos      Repos
	bcryptCost int
}

func NewSeeder(r Repos, bcryptCost int) *Seeder { return &Seeder{repos: r, bcryptCost: bcryptCost} }

func (s *Seeder) Run(ctx context.Context) (*SeedResult, error) {
	res := &SeedResult{Password: SeedPassword}

	admin, err := s.user(ctx, "admin@selvawasi.pe", "Administrador SelvaWasi", model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	res.AdminID = admin.ID
	opUser, err := s.user(ctx, "operador@selvawasi.pe", "Transportes Amazónicos", model.RoleOperator)
	if err != nil {
		return nil, err
	}
	owner, err := s.user(ctx, "restaurante@selvawasi.pe", "Dueño Al Frío y al Fuego", model.RoleRestaurantOwner)
	if err != nil {
		return nil, err
	}

	op, err := s.repos.Operators.GetByUserID(ctx, opUser.ID)
	if errors.Is(err, repository.ErrNotFound) {
		desc, phone := "Lanchas rápidas entre Iquitos y Nauta", "+51 965 000 111"
		op = &model.Operator{UserID: opUser.ID, CompanyName: "Transportes Amazónicos SAC", Description: &desc, Phone: &phone}
		err = s.repos.Operators.Create(ctx, op)
	}
	if err != nil {
		return nil, fmt.Errorf("seed operator: %w", err)
	}
	res.OperatorID = op.ID

	boat, err := s.repos.Boats.FindByName(ctx, op.ID, "Amazonas Express")
	if errors.Is(err, repository.ErrNotFound) {
		boat = &model.Boat{OperatorID: op.ID, Name: "Amazonas Express", Capacity: 20, BoatType: "LANCHA"}
		err = s.repos.Boats.Create(ctx, boat)
	}
	if err != nil {
		return nil, fmt.Errorf("seed boat: %w", err)
	}
	res.BoatID = boat.ID

	route, err := s.repos.Routes.FindByEnds(ctx, "Iquitos", "Nauta")
	if errors.Is(err, repository.ErrNotFound) {
		route, err = s.route(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("seed route: %w", err)
	}
	res.RouteID = route.ID

	if res.ScheduleIDs, err = s.schedules(ctx, boat.ID, route); err != nil {
		return nil, fmt.Errorf("seed schedules: %w", err)
	}

	rest, err := s.restaurant(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("seed restaurant: %w", err)
	}
	res.RestaurantID = rest.ID

	for _, e := range []model.Experience{
		{Title: "Reserva Nacional Pacaya Samiria", Description: "Tres días navegando el espejo de agua del Yanayacu-Pucate.",
			PriceCents: 85000, Duration: "3 días", Location: "Nauta",
			Images: model.EncodeImages([]string{"https://images.selvawasi.pe/pacaya-1.jpg"})},
		{Title: "Comunidad Nativa Bora", Description: "Visita cultural a la comunidad Bora de San Andrés.",
			PriceCents: 12000, Duration: "4 horas", Location: "Iquitos",
			Images: model.EncodeImages([]string{"https://images.selvawasi.pe/bora-1.jpg"})},
	} {
		found, err := s.repos.Experiences.FindByTitle(ctx, e.Title)
		if errors.Is(err, repository.ErrNotFound) {
			e.OperatorID = op.ID
			err = s.repos.Experiences.Create(ctx, &e)
			found = &e
		}
		if err != nil {
			return nil, fmt.Errorf("seed experience %q: %w", e.Title, err)
		}
		res.ExperienceIDs = append(res.ExperienceIDs, found.ID)
	}

	logrus.WithField("admin_id", res.AdminID).Info("seed: fixtures ready")
	return res, nil
}

// user finds a fixture account by email or creates it.  An existing
// account is forced back to its fixture role.
func (s *Seeder) user(ctx context.Context, email, name, role string) (*model.User, error) {
	u, err := s.repos.Users.GetByEmail(ctx, email)
	if err == nil {
		if u.Role != role {
			if err := s.repos.Users.SetRole(ctx, u.ID, role); err != nil {
				return nil, err
			}
			u.Role = role
		}
		return u, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	u = &model.User{Email: email, Name: name, Role: role}
	if err := s.repos.Users.Create(ctx, u, SeedPassword, s.bcryptCost); err != nil {
		return nil, fmt.Errorf("seed user %s: %w", email, err)
	}
	return u, nil
}

func (s *Seeder) route(ctx context.Context) (*model.Route, error) {
	ls, err := utils.LineString([][2]float64{
		{-73.2472, -3.7491}, // Iquitos
		{-73.3200, -3.9800},
		{-73.4500, -4.2500},
		{-73.5772, -4.5086}, // Nauta
	})
	if err != nil {
		return nil, err
	}
	path, err := utils.LineStringWKB(ls)
	if err != nil {
		return nil, err
	}
	km := 95.0
	rt := &model.Route{Origin: "Iquitos", Destination: "Nauta", DurationMinutes: 120, DistanceKm: &km, Geometry: path}
	if err := s.repos.Routes.Create(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

// schedules creates two departures for tomorrow unless the boat already
// serves the route.
func (s *Seeder) schedules(ctx context.Context, boatID uint64, route *model.Route) ([]uint64, error) {
	existing, err := s.repos.Schedules.List(ctx, repository.ScheduleFilter{BoatID: boatID, RouteID: route.ID})
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, 2)
	if len(existing) > 0 {
		for _, v := range existing {
			ids = append(ids, v.ID)
		}
		return ids, nil
	}
	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	day := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC)
	for _, hour := range []int{7, 14} {
		dep := day.Add(time.Duration(hour) * time.Hour)
		sc := &model.Schedule{
			BoatID:        boatID,
			RouteID:       route.ID,
			DepartureTime: dep,
			ArrivalTime:   dep.Add(time.Duration(route.DurationMinutes) * time.Minute),
		}
		if err := s.repos.Schedules.Create(ctx, sc); err != nil {
			return nil, err
		}
		for _, p := range []model.Price{
			{AmountCents: 2000, SeatType: model.DefaultSeatType},
			{AmountCents: 3500, SeatType: "VIP"},
		} {
			p.ScheduleID = sc.ID
			if err := s.repos.Schedules.CreatePrice(ctx, &p); err != nil {
				return nil, err
			}
		}
		ids = append(ids, sc.ID)
	}
	return ids, nil
}

func (s *Seeder) restaurant(ctx context.Context, ownerID uint64) (*model.Restaurant, error) {
	rest, err := s.repos.Restaurants.GetByOwner(ctx, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		phone := "+51 965 222 333"
		rest = &model.Restaurant{
			OwnerID:     ownerID,
			Name:        "Al Frío y al Fuego",
			Description: "Restaurante flotante sobre el río Itaya.",
			Address:     "Av. La Marina 134, Iquitos",
			Cuisine:     "Amazónica",
			Phone:       &phone,
		}
		err = s.repos.Restaurants.Create(ctx, rest)
	}
	if err != nil {
		return nil, err
	}
	dishes, err := s.repos.Restaurants.ListDishes(ctx, rest.ID)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(dishes))
	for _, d := range dishes {
		have[d.Name] = true
	}
	for _, d := range []model.Dish{
		{Name: "Juane de gallina", Description: "Arroz sazonado con gallina envuelto en hoja de bijao.", PriceCents: 2500},
		{Name: "Tacacho con cecina", Description: "Plátano verde asado con cecina ahumada.", PriceCents: 2800},
		{Name: "Patarashca de doncella", Description: "Pescado al carbón en hoja de bijao.", PriceCents: 3800},
	} {
		if have[d.Name] {
			continue
		}
		d.RestaurantID = rest.ID
		if err := s.repos.Restaurants.CreateDish(ctx, &d); err != nil {
			return nil, err
		}
	}
	return rest, nil
}
