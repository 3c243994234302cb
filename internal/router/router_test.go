package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/selvawasi/selvawasi-api/internal/config"
	"github.com/selvawasi/selvawasi-api/internal/database"
	"github.com/selvawasi/selvawasi-api/internal/handler"
	"github.com/selvawasi/selvawasi-api/internal/model"
	"github.com/selvawasi/selvawasi-api/internal/repository"
	"github.com/selvawasi/selvawasi-api/internal/service"
	"github.com/selvawasi/selvawasi-api/internal/utils"
)

const testSecret = "router-test-secret"

type app struct {
	e      *echo.Echo
	users  *repository.UserRepo
	events *service.RecordingPublisher
}

func newApp(t *testing.T, seedEnabled bool) *app {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 15, RefreshTTLDays: 1, BcryptCost: utils.MinPasswordCost}
	events := &service.RecordingPublisher{}

	users := repository.NewUserRepo(db)
	operators := repository.NewOperatorRepo(db)
	boats := repository.NewBoatRepo(db)
	routes := repository.NewRouteRepo(db)
	schedules := repository.NewScheduleRepo(db)
	bookings := repository.NewBookingRepo(db)
	restaurants := repository.NewRestaurantRepo(db)
	reservations := repository.NewReservationRepo(db)
	experiences := repository.NewExperienceRepo(db)
	seeder := service.NewSeeder(service.Repos{
		Users: users, Operators: operators, Boats: boats, Routes: routes,
		Schedules: schedules, Restaurants: restaurants, Experiences: experiences,
	}, utils.MinPasswordCost)

	e := New(db, Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db)),
		Operators:    handler.NewOperatorHandler(operators, users, boats),
		Boats:        handler.NewBoatHandler(boats, operators),
		Routes:       handler.NewRouteHandler(routes),
		Schedules:    handler.NewScheduleHandler(schedules, boats, routes),
		Experiences:  handler.NewExperienceHandler(experiences, operators),
		Restaurants:  handler.NewRestaurantHandler(restaurants, users),
		Bookings:     handler.NewBookingHandler(bookings, service.NewBookingService(bookings, experiences, events)),
		Reservations: handler.NewReservationHandler(reservations, service.NewReservationService(reservations, restaurants, events)),
		Admin:        handler.NewAdminHandler(repository.NewStatsRepo(db)),
		Debug:        handler.NewDebugHandler(seeder, seedEnabled),
	}, Options{JWTSecret: testSecret})
	return &app{e: e, users: users, events: events}
}

// do sends body as JSON and decodes the response into out when given.
func (a *app) do(t *testing.T, method, path, token string, body, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

type authBody struct {
	User   model.User `json:"user"`
	Access struct {
		Token string `json:"token"`
	} `json:"access"`
}

func (a *app) register(t *testing.T, email, role string) authBody {
	t.Helper()
	var out authBody
	code := a.do(t, http.MethodPost, "/auth/register", "", echo.Map{
		"email": email, "password": "secret123", "name": email, "role": role,
	}, &out)
	if code != http.StatusCreated {
		t.Fatalf("register %s: got %d", email, code)
	}
	return out
}

func (a *app) adminToken(t *testing.T) string {
	t.Helper()
	u := a.register(t, "admin@selvawasi.pe", "")
	if err := a.users.SetRole(context.Background(), u.User.ID, model.RoleAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}
	tok, err := utils.NewAccessToken(testSecret, u.User.ID, model.RoleAdmin, 15)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok.Token
}

type idBody struct {
	ID uint64 `json:"id"`
}

// catalogue creates operator, boat, route and a schedule through the API
// and returns the schedule id.
func (a *app) catalogue(t *testing.T, admin string, capacity int) uint64 {
	t.Helper()
	owner := a.register(t, "lanchas@selvawasi.pe", model.RoleOperator)
	var op, boat, route, sch idBody
	steps := []struct {
		path string
		body echo.Map
		out  *idBody
	}{
		{"/operators", echo.Map{"user_id": owner.User.ID, "company_name": "Lanchas del Oriente"}, &op},
		{"/boats", nil, &boat},
		{"/routes", echo.Map{"origin": "Iquitos", "destination": "Nauta", "duration_minutes": 150,
			"path": json.RawMessage(`{"type":"LineString","coordinates":[[-73.25,-3.74],[-73.1,-4.0],[-73.56,-4.51]]}`)}, &route},
		{"/schedules", nil, &sch},
	}
	for _, s := range steps {
		switch s.path {
		case "/boats":
			s.body = echo.Map{"operator_id": op.ID, "name": "Amazonas Express", "capacity": capacity}
		case "/schedules":
			s.body = echo.Map{
				"boat_id": boat.ID, "route_id": route.ID,
				"departure_time": "2030-01-10T07:00:00Z", "arrival_time": "2030-01-10T09:30:00Z",
				"prices": []echo.Map{{"amount_cents": 2500}, {"amount_cents": 4000, "seat_type": "vip"}},
			}
		}
		if code := a.do(t, http.MethodPost, s.path, admin, s.body, s.out); code != http.StatusCreated {
			t.Fatalf("POST %s: got %d", s.path, code)
		}
	}
	return sch.ID
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	a := newApp(t, false)
	tourist := a.register(t, "turista@x.pe", "").Access.Token
	for _, path := range []string{"/boats", "/experiences", "/routes", "/schedules"} {
		if code := a.do(t, http.MethodPost, path, "", echo.Map{}, nil); code != http.StatusUnauthorized {
			t.Fatalf("POST %s without token: got %d", path, code)
		}
		if code := a.do(t, http.MethodPost, path, tourist, echo.Map{}, nil); code != http.StatusForbidden {
			t.Fatalf("POST %s as tourist: got %d", path, code)
		}
	}
	if code := a.do(t, http.MethodGet, "/admin/stats", tourist, nil, nil); code != http.StatusForbidden {
		t.Fatalf("stats as tourist: got %d", code)
	}
	if code := a.do(t, http.MethodGet, "/bookings/my-bookings", "garbage", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("bad token: got %d", code)
	}
}

func TestRegisterCannotChooseAdmin(t *testing.T) {
	a := newApp(t, false)
	if got := a.register(t, "sneaky@x.pe", "ADMIN").User.Role; got != model.RoleTourist {
		t.Fatalf("role = %s, want TOURIST", got)
	}
	if got := a.register(t, "chef@x.pe", "restaurant_owner").User.Role; got != model.RoleRestaurantOwner {
		t.Fatalf("role = %s", got)
	}
}

func TestBookingFlow(t *testing.T) {
	a := newApp(t, false)
	admin := a.adminToken(t)
	schedule := a.catalogue(t, admin, 2)
	tourist := a.register(t, "viajero@x.pe", "").Access.Token

	book := echo.Map{"schedule_id": schedule, "passenger_name": "Ana", "passenger_document": "44556677", "status": "PENDING"}
	var seats []string
	for i := 0; i < 2; i++ {
		var b model.Booking
		if code := a.do(t, http.MethodPost, "/bookings", tourist, book, &b); code != http.StatusCreated {
			t.Fatalf("booking %d: got %d", i, code)
		}
		if b.Status != model.BookingConfirmed || b.TotalPriceCents != 2500 || b.SeatNumber == nil {
			t.Fatalf("booking %d: %+v", i, b)
		}
		seats = append(seats, *b.SeatNumber)
	}
	if seats[0] != "1" || seats[1] != "2" {
		t.Fatalf("seats = %v", seats)
	}
	var full map[string]string
	if code := a.do(t, http.MethodPost, "/bookings", tourist, book, &full); code != http.StatusConflict {
		t.Fatalf("third booking: got %d", code)
	}
	if full["error"] != service.ErrNoSeatsAvailable.Error() {
		t.Fatalf("error = %q", full["error"])
	}

	var avail map[string]interface{}
	a.do(t, http.MethodGet, fmt.Sprintf("/schedules/%d/availability", schedule), "", nil, &avail)
	if avail["available_seats"].(float64) != 0 || avail["capacity"].(float64) != 2 {
		t.Fatalf("availability = %v", avail)
	}

	var mine []repository.BookingView
	a.do(t, http.MethodGet, "/bookings/my-bookings", tourist, nil, &mine)
	if len(mine) != 2 || mine[0].Origin == nil || *mine[0].Origin != "Iquitos" {
		t.Fatalf("my bookings = %+v", mine)
	}

	stranger := a.register(t, "otro@x.pe", "").Access.Token
	cancelPath := fmt.Sprintf("/bookings/%d/cancel", mine[0].ID)
	if code := a.do(t, http.MethodPatch, cancelPath, stranger, nil, nil); code != http.StatusForbidden {
		t.Fatalf("stranger cancel: got %d", code)
	}
	var cancelled repository.BookingView
	if code := a.do(t, http.MethodPatch, cancelPath, tourist, nil, &cancelled); code != http.StatusOK {
		t.Fatalf("cancel: got %d", code)
	}
	if cancelled.Status != model.BookingCancelled || cancelled.SeatNumber != nil {
		t.Fatalf("cancelled = %+v", cancelled)
	}
	var again model.Booking
	if code := a.do(t, http.MethodPost, "/bookings", stranger, book, &again); code != http.StatusCreated {
		t.Fatalf("rebook: got %d", code)
	}

	var list []repository.BookingView
	a.do(t, http.MethodGet, fmt.Sprintf("/bookings?status=CONFIRMED&schedule_id=%d", schedule), admin, nil, &list)
	if len(list) != 2 {
		t.Fatalf("admin list = %d bookings", len(list))
	}
	if n := a.events.Count("booking.confirmed"); n != 3 {
		t.Fatalf("booking events = %d", n)
	}
}

func TestBookingNeedsExactlyOneTarget(t *testing.T) {
	a := newApp(t, false)
	tourist := a.register(t, "viajero@x.pe", "").Access.Token
	body := echo.Map{"passenger_name": "Ana", "passenger_document": "1"}
	if code := a.do(t, http.MethodPost, "/bookings", tourist, body, nil); code != http.StatusBadRequest {
		t.Fatalf("no target: got %d", code)
	}
	body["schedule_id"] = 999
	if code := a.do(t, http.MethodPost, "/bookings", tourist, body, nil); code != http.StatusNotFound {
		t.Fatalf("missing schedule: got %d", code)
	}
}

func TestReservationApproval(t *testing.T) {
	a := newApp(t, false)
	owner := a.register(t, "chef@x.pe", model.RoleRestaurantOwner).Access.Token
	var rest idBody
	if code := a.do(t, http.MethodPost, "/restaurants", owner, echo.Map{
		"name": "Al Frío y al Fuego", "address": "Río Itaya", "cuisine": "Amazónica",
	}, &rest); code != http.StatusCreated {
		t.Fatalf("restaurant: got %d", code)
	}
	tourist := a.register(t, "comensal@x.pe", "").Access.Token

	var res model.RestaurantReservation
	if code := a.do(t, http.MethodPost, "/reservations", tourist, echo.Map{
		"restaurant_id": rest.ID, "pax": 4, "requested_date": "2030-02-01", "status": "CONFIRMED",
	}, &res); code != http.StatusCreated {
		t.Fatalf("reservation: got %d", code)
	}
	if res.Status != model.ReservationPendingApproval {
		t.Fatalf("status = %s", res.Status)
	}
	if code := a.do(t, http.MethodPost, "/reservations", tourist, echo.Map{
		"restaurant_id": rest.ID, "pax": 0, "requested_date": "2030-02-01",
	}, nil); code != http.StatusBadRequest {
		t.Fatalf("zero pax: got %d", code)
	}

	path := fmt.Sprintf("/reservations/%d/status", res.ID)
	confirm := echo.Map{"status": "CONFIRMED"}
	if code := a.do(t, http.MethodPatch, path, tourist, confirm, nil); code != http.StatusForbidden {
		t.Fatalf("tourist decides: got %d", code)
	}
	for i := 0; i < 2; i++ {
		var v repository.ReservationView
		if code := a.do(t, http.MethodPatch, path, owner, confirm, &v); code != http.StatusOK {
			t.Fatalf("confirm %d: got %d", i, code)
		}
		if v.Status != model.ReservationConfirmed {
			t.Fatalf("confirm %d: status %s", i, v.Status)
		}
	}
	if n := a.events.Count("reservation.status_changed"); n != 1 {
		t.Fatalf("status events = %d", n)
	}
	if code := a.do(t, http.MethodPatch, path, owner, echo.Map{"status": "PENDING_APPROVAL"}, nil); code != http.StatusBadRequest {
		t.Fatalf("back to pending: got %d", code)
	}

	var listed []repository.ReservationView
	a.do(t, http.MethodGet, "/reservations/owner?status=confirmed", owner, nil, &listed)
	if len(listed) != 1 || listed[0].ID != res.ID {
		t.Fatalf("owner list = %+v", listed)
	}
	if code := a.do(t, http.MethodGet, "/reservations/owner", tourist, nil, nil); code != http.StatusForbidden {
		t.Fatalf("tourist owner list: got %d", code)
	}
}

func TestDebugSeed(t *testing.T) {
	if code := newApp(t, false).do(t, http.MethodGet, "/debug/seed", "", nil, nil); code != http.StatusNotFound {
		t.Fatalf("disabled seed: got %d", code)
	}
	a := newApp(t, true)
	for i := 0; i < 2; i++ {
		if code := a.do(t, http.MethodGet, "/debug/seed", "", nil, nil); code != http.StatusOK {
			t.Fatalf("seed %d: got %d", i, code)
		}
	}
	var schedules []repository.ScheduleView
	a.do(t, http.MethodGet, "/schedules?origin=iqui", "", nil, &schedules)
	if len(schedules) != 2 {
		t.Fatalf("seeded schedules = %d", len(schedules))
	}
}

func TestUnknownRouteUsesErrorShape(t *testing.T) {
	a := newApp(t, false)
	var body map[string]string
	if code := a.do(t, http.MethodGet, "/nope", "", nil, &body); code != http.StatusNotFound {
		t.Fatalf("got %d", code)
	}
	if body["error"] == "" {
		t.Fatalf("body = %v", body)
	}
}

func TestScheduleOverlapRejected(t *testing.T) {
	a := newApp(t, false)
	admin := a.adminToken(t)
	first := a.catalogue(t, admin, 10)
	var sch repository.ScheduleView
	a.do(t, http.MethodGet, fmt.Sprintf("/schedules/%d", first), "", nil, &sch)

	clash := echo.Map{
		"boat_id": sch.BoatID, "route_id": sch.RouteID,
		"departure_time": "2030-01-10T08:00:00Z", "arrival_time": "2030-01-10T10:00:00Z",
	}
	if code := a.do(t, http.MethodPost, "/schedules", admin, clash, nil); code != http.StatusConflict {
		t.Fatalf("overlapping departure: got %d", code)
	}
	clash["departure_time"], clash["arrival_time"] = "2030-01-10T09:30:00Z", "2030-01-10T12:00:00Z"
	if code := a.do(t, http.MethodPost, "/schedules", admin, clash, nil); code != http.StatusCreated {
		t.Fatalf("back-to-back departure: got %d", code)
	}
	if code := a.do(t, http.MethodPatch, fmt.Sprintf("/schedules/%d", first), admin,
		echo.Map{"arrival_time": "2030-01-10T09:45:00Z"}, nil); code != http.StatusConflict {
		t.Fatalf("stretching into the next trip: got %d", code)
	}
	if code := a.do(t, http.MethodPatch, fmt.Sprintf("/schedules/%d", first), admin,
		echo.Map{"departure_time": "2030-01-10T06:30:00Z"}, nil); code != http.StatusOK {
		t.Fatalf("moving within its own slot: got %d", code)
	}
}

func TestAdminDashboard(t *testing.T) {
	a := newApp(t, false)
	admin := a.adminToken(t)
	schedule := a.catalogue(t, admin, 5)
	tourist := a.register(t, "viajero@x.pe", "").Access.Token
	book := echo.Map{"schedule_id": schedule, "passenger_name": "Ana", "passenger_document": "1"}
	for i := 0; i < 2; i++ {
		if code := a.do(t, http.MethodPost, "/bookings", tourist, book, nil); code != http.StatusCreated {
			t.Fatalf("booking %d: got %d", i, code)
		}
	}

	var stats repository.Stats
	if code := a.do(t, http.MethodGet, "/admin/stats", admin, nil, &stats); code != http.StatusOK {
		t.Fatalf("stats: got %d", code)
	}
	if stats.ConfirmedBookings != 2 || stats.RevenueCents != 5000 || stats.Boats != 1 || stats.Users != 3 {
		t.Fatalf("stats = %+v", stats)
	}

	var feed []repository.Activity
	a.do(t, http.MethodGet, "/admin/activity?limit=1", admin, nil, &feed)
	if len(feed) != 1 || feed[0].Kind != repository.ActivityBooking || feed[0].Summary != "Iquitos - Nauta" {
		t.Fatalf("activity = %+v", feed)
	}
	if code := a.do(t, http.MethodGet, "/admin/activity?limit=abc", admin, nil, nil); code != http.StatusBadRequest {
		t.Fatalf("bad limit: got %d", code)
	}
}

func TestDeletes(t *testing.T) {
	a := newApp(t, false)
	admin := a.adminToken(t)
	schedule := a.catalogue(t, admin, 4)
	var sch repository.ScheduleView
	a.do(t, http.MethodGet, fmt.Sprintf("/schedules/%d", schedule), "", nil, &sch)

	tourist := a.register(t, "viajero@x.pe", "").Access.Token
	var b model.Booking
	if code := a.do(t, http.MethodPost, "/bookings", tourist, echo.Map{"schedule_id": schedule, "passenger_name": "Ana", "passenger_document": "1"}, &b); code != http.StatusCreated {
		t.Fatalf("booking: got %d", code)
	}

	// Parents still referenced by children are kept.
	for _, path := range []string{
		fmt.Sprintf("/boats/%d", sch.BoatID),
		fmt.Sprintf("/routes/%d", sch.RouteID),
		fmt.Sprintf("/operators/%d", sch.OperatorID),
		fmt.Sprintf("/schedules/%d", schedule),
	} {
		if code := a.do(t, http.MethodDelete, path, admin, nil, nil); code != http.StatusConflict {
			t.Fatalf("DELETE %s with dependents: got %d", path, code)
		}
	}

	bookingPath := fmt.Sprintf("/bookings/%d", b.ID)
	if code := a.do(t, http.MethodDelete, bookingPath, tourist, nil, nil); code != http.StatusForbidden {
		t.Fatalf("tourist deletes booking: got %d", code)
	}
	if code := a.do(t, http.MethodDelete, bookingPath, admin, nil, nil); code != http.StatusNoContent {
		t.Fatalf("admin deletes booking: got %d", code)
	}
	if code := a.do(t, http.MethodGet, bookingPath, admin, nil, nil); code != http.StatusNotFound {
		t.Fatalf("deleted booking still readable: got %d", code)
	}
	if code := a.do(t, http.MethodDelete, bookingPath, admin, nil, nil); code != http.StatusNotFound {
		t.Fatalf("second delete: got %d", code)
	}

	// With the booking gone the schedule (and its prices) can go, then the boat.
	if code := a.do(t, http.MethodDelete, fmt.Sprintf("/schedules/%d", schedule), admin, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete schedule: got %d", code)
	}
	if code := a.do(t, http.MethodDelete, fmt.Sprintf("/boats/%d", sch.BoatID), admin, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete boat: got %d", code)
	}
}

func TestRestaurantDeleteOwnership(t *testing.T) {
	a := newApp(t, false)
	owner := a.register(t, "chef@x.pe", model.RoleRestaurantOwner).Access.Token
	rival := a.register(t, "rival@x.pe", model.RoleRestaurantOwner).Access.Token
	var rest, dish idBody
	if code := a.do(t, http.MethodPost, "/restaurants", owner, echo.Map{"name": "Al Frío y al Fuego", "address": "Río Itaya"}, &rest); code != http.StatusCreated {
		t.Fatalf("restaurant: got %d", code)
	}
	if code := a.do(t, http.MethodPost, fmt.Sprintf("/restaurants/%d/dishes", rest.ID), rival,
		echo.Map{"name": "Tacacho", "price_cents": 1800}, nil); code != http.StatusForbidden {
		t.Fatalf("rival adds dish: got %d", code)
	}
	if code := a.do(t, http.MethodPost, fmt.Sprintf("/restaurants/%d/dishes", rest.ID), owner,
		echo.Map{"name": "Tacacho", "price_cents": 1800}, &dish); code != http.StatusCreated {
		t.Fatalf("owner adds dish: got %d", code)
	}

	dishPath := fmt.Sprintf("/dishes/%d", dish.ID)
	if code := a.do(t, http.MethodDelete, dishPath, rival, nil, nil); code != http.StatusForbidden {
		t.Fatalf("rival deletes dish: got %d", code)
	}
	if code := a.do(t, http.MethodDelete, dishPath, owner, nil, nil); code != http.StatusNoContent {
		t.Fatalf("owner deletes dish: got %d", code)
	}
	if code := a.do(t, http.MethodDelete, dishPath, owner, nil, nil); code != http.StatusNotFound {
		t.Fatalf("dish deleted twice: got %d", code)
	}

	restPath := fmt.Sprintf("/restaurants/%d", rest.ID)
	if code := a.do(t, http.MethodDelete, restPath, rival, nil, nil); code != http.StatusForbidden {
		t.Fatalf("rival deletes restaurant: got %d", code)
	}
	tourist := a.register(t, "comensal@x.pe", "").Access.Token
	if code := a.do(t, http.MethodPost, "/reservations", tourist, echo.Map{"restaurant_id": rest.ID, "pax": 2, "requested_date": "2030-02-01"}, nil); code != http.StatusCreated {
		t.Fatalf("reservation: got %d", code)
	}
	if code := a.do(t, http.MethodDelete, restPath, owner, nil, nil); code != http.StatusConflict {
		t.Fatalf("restaurant with reservations: got %d", code)
	}

	var other idBody
	a.do(t, http.MethodPost, "/restaurants", rival, echo.Map{"name": "La Chacra", "address": "Nauta"}, &other)
	a.do(t, http.MethodPost, fmt.Sprintf("/restaurants/%d/reviews", other.ID), tourist, echo.Map{"rating": 5}, nil)
	if code := a.do(t, http.MethodDelete, fmt.Sprintf("/restaurants/%d", other.ID), rival, nil, nil); code != http.StatusNoContent {
		t.Fatalf("owner deletes restaurant with reviews: got %d", code)
	}
}

func TestPatchOnlyChangesSuppliedFields(t *testing.T) {
	a := newApp(t, false)
	admin := a.adminToken(t)
	schedule := a.catalogue(t, admin, 12)
	var sch repository.ScheduleView
	a.do(t, http.MethodGet, fmt.Sprintf("/schedules/%d", schedule), "", nil, &sch)

	var boat model.Boat
	if code := a.do(t, http.MethodPatch, fmt.Sprintf("/boats/%d", sch.BoatID), admin, echo.Map{"capacity": 30}, &boat); code != http.StatusOK {
		t.Fatalf("patch boat: got %d", code)
	}
	if boat.Capacity != 30 || boat.Name != "Amazonas Express" || boat.OperatorID != sch.OperatorID {
		t.Fatalf("boat = %+v", boat)
	}

	var exp idBody
	if code := a.do(t, http.MethodPost, "/experiences", admin, echo.Map{
		"operator_id": sch.OperatorID, "title": "Pesca de pirañas", "price_cents": 9000,
		"location": "Iquitos", "images": []string{"https://img.selvawasi.pe/pesca.jpg"},
	}, &exp); code != http.StatusCreated {
		t.Fatalf("create experience: got %d", code)
	}
	var patched struct {
		Title      string   `json:"title"`
		PriceCents int64    `json:"price_cents"`
		Location   string   `json:"location"`
		Images     []string `json:"images"`
	}
	if code := a.do(t, http.MethodPatch, fmt.Sprintf("/experiences/%d", exp.ID), admin, echo.Map{"location": "Nauta"}, &patched); code != http.StatusOK {
		t.Fatalf("patch experience: got %d", code)
	}
	if patched.Location != "Nauta" || patched.Title != "Pesca de pirañas" || patched.PriceCents != 9000 || len(patched.Images) != 1 {
		t.Fatalf("experience = %+v", patched)
	}

	owner := a.register(t, "chef@x.pe", model.RoleRestaurantOwner).Access.Token
	var rest idBody
	a.do(t, http.MethodPost, "/restaurants", owner, echo.Map{"name": "Al Frío y al Fuego", "address": "Río Itaya", "cuisine": "Amazónica"}, &rest)
	var r model.Restaurant
	if code := a.do(t, http.MethodPatch, fmt.Sprintf("/restaurants/%d", rest.ID), owner, echo.Map{"cuisine": "Fusión"}, &r); code != http.StatusOK {
		t.Fatalf("patch restaurant: got %d", code)
	}
	if r.Cuisine != "Fusión" || r.Name != "Al Frío y al Fuego" || r.Address != "Río Itaya" {
		t.Fatalf("restaurant = %+v", r)
	}
	stranger := a.register(t, "otro@x.pe", "").Access.Token
	if code := a.do(t, http.MethodPatch, fmt.Sprintf("/restaurants/%d", rest.ID), stranger, echo.Map{"name": "Mío"}, nil); code != http.StatusForbidden {
		t.Fatalf("stranger patches restaurant: got %d", code)
	}
}
