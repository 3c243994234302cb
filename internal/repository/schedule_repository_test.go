package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/selvawasi/selvawasi-api/internal/database"
	"github.com/selvawasi/selvawasi-api/internal/model"
	"github.com/selvawasi/selvawasi-api/internal/utils"
)

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// boatAndRoute seeds the parents a schedule points at.
func boatAndRoute(t *testing.T, db *sqlx.DB) (boatID, routeID uint64) {
	t.Helper()
	ctx := context.Background()
	u := &model.User{Email: "operador@x.pe", Name: "Operador", Role: model.RoleOperator}
	if err := NewUserRepo(db).Create(ctx, u, "secret123", utils.MinPasswordCost); err != nil {
		t.Fatalf("user: %v", err)
	}
	op := &model.Operator{UserID: u.ID, CompanyName: "Lanchas"}
	if err := NewOperatorRepo(db).Create(ctx, op); err != nil {
		t.Fatalf("operator: %v", err)
	}
	b := &model.Boat{OperatorID: op.ID, Name: "Amazonas", Capacity: 10}
	if err := NewBoatRepo(db).Create(ctx, b); err != nil {
		t.Fatalf("boat: %v", err)
	}
	rt := &model.Route{Origin: "Iquitos", Destination: "Nauta", DurationMinutes: 120}
	if err := NewRouteRepo(db).Create(ctx, rt); err != nil {
		t.Fatalf("route: %v", err)
	}
	return b.ID, rt.ID
}

func TestCreateWithPricesIsAtomic(t *testing.T) {
	db := openDB(t)
	repo := NewScheduleRepo(db)
	boatID, routeID := boatAndRoute(t, db)
	ctx := context.Background()
	dep := time.Date(2030, 1, 10, 7, 0, 0, 0, time.UTC)

	// amount_cents has a CHECK (>= 0), so the second fare fails after the
	// schedule and first fare are already written.
	s := &model.Schedule{BoatID: boatID, RouteID: routeID, DepartureTime: dep, ArrivalTime: dep.Add(2 * time.Hour)}
	err := repo.CreateWithPrices(ctx, s, []*model.Price{{AmountCents: 2500}, {AmountCents: -1}})
	if err == nil {
		t.Fatal("expected the negative fare to fail")
	}
	var schedules, prices int
	if err := db.Get(&schedules, "SELECT COUNT(*) FROM schedules"); err != nil {
		t.Fatalf("count: %v", err)
	}
	if err := db.Get(&prices, "SELECT COUNT(*) FROM prices"); err != nil {
		t.Fatalf("count: %v", err)
	}
	if schedules != 0 || prices != 0 {
		t.Fatalf("partial write left %d schedules, %d prices", schedules, prices)
	}

	s = &model.Schedule{BoatID: boatID, RouteID: routeID, DepartureTime: dep, ArrivalTime: dep.Add(2 * time.Hour)}
	err = repo.CreateWithPrices(ctx, s, []*model.Price{{AmountCents: 4000, SeatType: "VIP"}, {AmountCents: 2500}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.ListPrices(ctx, s.ID)
	if err != nil {
		t.Fatalf("prices: %v", err)
	}
	if len(got) != 2 || got[0].AmountCents != 2500 || got[0].SeatType != model.DefaultSeatType || got[0].Currency != model.DefaultCurrency {
		t.Fatalf("prices = %+v", got)
	}
}

func TestScheduleWithNoPrices(t *testing.T) {
	db := openDB(t)
	repo := NewScheduleRepo(db)
	boatID, routeID := boatAndRoute(t, db)
	dep := time.Date(2030, 1, 10, 7, 0, 0, 0, time.UTC)
	s := &model.Schedule{BoatID: boatID, RouteID: routeID, DepartureTime: dep, ArrivalTime: dep.Add(time.Hour)}
	if err := repo.CreateWithPrices(context.Background(), s, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.ID == 0 {
		t.Fatal("schedule id not set")
	}
}
