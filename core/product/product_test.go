package product

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/e-commerce-api/core/category"
	"github.com/irsalhamdi/e-commerce-api/database/dbtest"
	"github.com/irsalhamdi/e-commerce-api/validate"
	"github.com/shopspring/decimal"
)

var testDB *dbtest.Database

func TestMain(m *testing.M) {
	db, err := dbtest.Start("product")
	if err != nil {
		fmt.Printf("skipping database tests: %v\n", err)
	}
	testDB = db

	code := m.Run()

	if testDB != nil {
		testDB.Close()
	}
	os.Exit(code)
}

func newStore(t *testing.T) *dbtest.Database {
	t.Helper()
	if testDB == nil {
		t.Skip("database not available")
	}
	if err := testDB.Reset(context.Background()); err != nil {
		t.Fatal(err)
	}
	return testDB
}

func TestListInvalidKind(t *testing.T) {
	if _, err := List(context.Background(), nil, Kind("cheapest"), ""); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestList(t *testing.T) {
	db := newStore(t)
	ctx := context.Background()

	cat := category.Category{ID: validate.GenerateID(), Name: "desk", ImageURL: "desk.png"}
	if err := category.Create(ctx, db.DB, cat); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	ps := []Product{
		{Name: "lamp", CategoryID: &cat.ID, Popular: true},
		{Name: "chair", CategoryID: &cat.ID, BestSeller: true},
		{Name: "mug", Popular: true, BestSeller: true},
	}
	for i := range ps {
		ps[i].ID = validate.GenerateID()
		ps[i].ImageURL = ps[i].Name + ".png"
		ps[i].Price = decimal.NewFromInt(int64(i + 1))
		ps[i].CreatedAt, ps[i].UpdatedAt = now, now
		if err := Create(ctx, db.DB, ps[i]); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		kind Kind
		want []string
	}{
		{KindCategory, []string{"chair", "lamp"}},
		{KindPopular, []string{"lamp", "mug"}},
		{KindBestSeller, []string{"chair", "mug"}},
	}

	for _, tt := range tests {
		sums, err := List(ctx, db.DB, tt.kind, cat.ID)
		if err != nil {
			t.Fatalf("listing %s: %v", tt.kind, err)
		}

		var got []string
		for _, s := range sums {
			got = append(got, s.Name)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", tt.kind, diff)
		}
	}
}

func TestCatalogAndUpdatePrice(t *testing.T) {
	db := newStore(t)
	ctx := context.Background()
	c := Catalog{DB: db.DB}

	id, err := db.SeedProduct(ctx, "pen", "1.20")
	if err != nil {
		t.Fatal(err)
	}

	price, err := c.UnitPrice(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if price.StringFixed(2) != "1.20" {
		t.Fatalf("expected 1.20, got %s", price)
	}

	if err := UpdatePrice(ctx, db.DB, id, decimal.RequireFromString("2.50"), time.Now().UTC()); err != nil {
		t.Fatal(err)
	}
	if price, _ = c.UnitPrice(ctx, id); price.StringFixed(2) != "2.50" {
		t.Fatalf("expected 2.50, got %s", price)
	}

	missing := validate.GenerateID()
	if _, err := c.UnitPrice(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := UpdatePrice(ctx, db.DB, missing, decimal.NewFromInt(1), time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
