package property

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// TestViewCounter_Integration connects to a real PostgreSQL via DATABASE_URL
// and verifies the view counter never loses increments under concurrency.
func TestViewCounter_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is empty; set it to a live PostgreSQL to run integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pool: %v", err)
	}
	defer pool.Close()

	var exists bool
	if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name='properties')`).Scan(&exists); err != nil || !exists {
		t.Skip("database schema missing; apply migrations first")
	}

	repo := NewRepository(pool)
	svc := NewService(repo)

	params := CreateParams{
		PropertyType: "PG",
		Title:        "Concurrency probe listing",
		Address:      Address{City: "Pune", Area: "Baner"},
		Pricing:      Pricing{RentAmount: 9000},
	}
	created, err := svc.Create(ctx, "auth0|it-owner", params)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() {
		ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel2()
		_, _ = pool.Exec(ctx2, `DELETE FROM properties WHERE id = $1`, created.ID)
	})

	const readers = 25
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < readers; i++ {
		g.Go(func() error {
			_, err := svc.Get(gctx, created.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent gets: %v", err)
	}

	var views int64
	if err := pool.QueryRow(ctx, `SELECT views FROM properties WHERE id = $1`, created.ID).Scan(&views); err != nil {
		t.Fatalf("read views: %v", err)
	}
	if views != readers {
		t.Fatalf("expected exactly %d views, got %d", readers, views)
	}
}

// TestCatalogVisibility_Integration verifies the public catalog never leaks
// drafts or inactive listings and honors rent bounds at the SQL level.
func TestCatalogVisibility_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is empty; set it to a live PostgreSQL to run integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pool: %v", err)
	}
	defer pool.Close()

	repo := NewRepository(pool)
	svc := NewService(repo)
	owner := "auth0|it-catalog-owner"

	ids := []string{}
	mk := func(status PublishStatus, rent int64, city string) Property {
		params := CreateParams{
			PropertyType:  "Flat",
			Title:         "Catalog probe",
			Address:       Address{City: city},
			Pricing:       Pricing{RentAmount: rent},
			PublishStatus: status,
		}
		p, err := svc.Create(ctx, owner, params)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, p.ID)
		return p
	}
	t.Cleanup(func() {
		ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel2()
		for _, id := range ids {
			_, _ = pool.Exec(ctx2, `DELETE FROM properties WHERE id = $1`, id)
		}
	})

	city := "it-visibility-town"
	mk(StatusDraft, 6000, city)
	published := mk(StatusPublished, 7000, city)
	inactive := mk(StatusPublished, 8000, city)
	if _, err := svc.ToggleActive(ctx, inactive.ID, owner); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	mk(StatusPublished, 20000, city)

	page, err := svc.List(ctx, Filters{City: city, MinRent: 5000, MaxRent: 10000})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Properties) != 1 || page.Properties[0].ID != published.ID {
		t.Fatalf("expected only the published in-range listing, got %+v", page.Properties)
	}

	ownerPage, err := svc.ListByOwner(ctx, OwnerFilters{OwnerSubject: owner})
	if err != nil {
		t.Fatalf("owner list: %v", err)
	}
	if ownerPage.Pagination.TotalCount != 4 {
		t.Fatalf("owner path should see all 4 listings, got %d", ownerPage.Pagination.TotalCount)
	}
}
