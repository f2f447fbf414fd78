package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/obras/internal/db"
	"github.com/erazemk/obras/internal/model"
)

func TestItemSiteNameRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	moved := mustCreateItem(t, database, model.NewItem{Name: "Drill", Category: model.CategoryElectrical})
	if _, err := RegisterMovement(ctx, database, model.NewMovement{
		ItemID: moved, Destination: "Warehouse A", Responsible: "Ana",
	}); err != nil {
		t.Fatalf("RegisterMovement: %v", err)
	}

	// A legacy row that stored the site name instead of its id.
	database.MustExec(`INSERT INTO items (name, category, status, current_site)
		VALUES ('Saw', 'hand_tool', 'in_use', 'Warehouse A')`)

	views, err := ListItemsWithSiteNames(ctx, database, model.ItemFilter{})
	if err != nil {
		t.Fatalf("ListItemsWithSiteNames: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 items, got %d", len(views))
	}
	for _, v := range views {
		if v.SiteName != "Warehouse A" {
			t.Errorf("item %q: expected site name 'Warehouse A', got %q (stored %v)", v.Name, v.SiteName, v.CurrentSite)
		}
	}
	if views[0].CurrentSite.Kind != model.SiteRefName || views[1].CurrentSite.Kind != model.SiteRefID {
		t.Errorf("expected newest-first with legacy name ref then id ref, got %v, %v",
			views[0].CurrentSite, views[1].CurrentSite)
	}
}

func TestSiteNameResolutionEdgeCases(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// A site whose name is all digits, referenced by name on a legacy row.
	database.MustExec(`INSERT INTO sites (id, name) VALUES (1, 'Main Yard'), (2, '2024')`)
	database.MustExec(`INSERT INTO items (id, name, category, status, current_site) VALUES
		(1, 'By id', 'material', 'in_use', '1'),
		(2, 'Digits name', 'material', 'in_use', '2024'),
		(3, 'Unknown name', 'material', 'in_use', 'Gone Site'),
		(4, 'Unknown id', 'material', 'in_use', '77'),
		(5, 'No site', 'material', 'broken', NULL)`)

	want := map[string]string{
		"By id":        "Main Yard",
		"Digits name":  "2024",
		"Unknown name": "",
		"Unknown id":   "",
		"No site":      "",
	}

	views, err := ListItemsWithSiteNames(ctx, database, model.ItemFilter{})
	if err != nil {
		t.Fatalf("ListItemsWithSiteNames: %v", err)
	}
	for _, v := range views {
		if v.SiteName != want[v.Name] {
			t.Errorf("item %q: expected site name %q, got %q", v.Name, want[v.Name], v.SiteName)
		}
	}
}

func TestListItemsFilter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	mustCreateItem(t, database, model.NewItem{Brand: "Bosch", Name: "Drill", Category: model.CategoryElectrical, Status: model.ItemStatusInUse, Site: "North"})
	mustCreateItem(t, database, model.NewItem{Brand: "Stihl", Name: "Chainsaw", Category: model.CategoryCombustion, Status: model.ItemStatusInUse, Site: "South"})
	mustCreateItem(t, database, model.NewItem{Brand: "Bosch", Name: "Grinder", Category: model.CategoryElectrical})

	bosch, _ := ListItemsWithSiteNames(ctx, database, model.ItemFilter{Query: "bosch"})
	if len(bosch) != 2 {
		t.Errorf("expected 2 Bosch items, got %d", len(bosch))
	}

	south, _ := ListItemsWithSiteNames(ctx, database, model.ItemFilter{Site: "South"})
	if len(south) != 1 || south[0].Name != "Chainsaw" {
		t.Errorf("expected only the chainsaw at South, got %+v", south)
	}

	bySiteText, _ := ListItemsWithSiteNames(ctx, database, model.ItemFilter{Query: "nORth"})
	if len(bySiteText) != 1 {
		t.Errorf("expected search to match site names, got %d", len(bySiteText))
	}

	none, err := ListItemsWithSiteNames(ctx, database, model.ItemFilter{Query: "excavator"})
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil result, got %v, %v", none, err)
	}
}

func TestListMovementsWithNames(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	drill := mustCreateItem(t, database, model.NewItem{Brand: "Bosch", Name: "Drill", Category: model.CategoryElectrical})
	saw := mustCreateItem(t, database, model.NewItem{Brand: "Makita", Name: "Saw", Category: model.CategoryElectrical})

	RegisterMovement(ctx, database, model.NewMovement{ItemID: drill, Destination: "Site A", Responsible: "Ana"})
	RegisterMovement(ctx, database, model.NewMovement{ItemID: drill, Origin: "Site A", Destination: "Site B", Responsible: "Luis"})
	RegisterMovement(ctx, database, model.NewMovement{ItemID: saw, Destination: "Site B", Responsible: "Ana"})

	// Legacy movement that stored site names.
	database.MustExec(`INSERT INTO movements (item_id, origin_site, destination_site, responsible, reason)
		VALUES (?, 'Site B', 'Site A', 'Eva', 'Other')`, saw)

	all, err := ListMovementsWithNames(ctx, database, model.MovementFilter{})
	if err != nil {
		t.Fatalf("ListMovementsWithNames: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 movements, got %d", len(all))
	}

	newest := all[0]
	if newest.Responsible != "Eva" {
		t.Errorf("expected newest movement first, got %q", newest.Responsible)
	}
	if newest.OriginName != "Site B" || newest.DestinationName != "Site A" {
		t.Errorf("expected legacy names resolved, got %q -> %q", newest.OriginName, newest.DestinationName)
	}
	if newest.ItemBrand != "Makita" || newest.ItemName != "Saw" {
		t.Errorf("expected item Makita Saw, got %q %q", newest.ItemBrand, newest.ItemName)
	}

	byItem, _ := ListMovementsWithNames(ctx, database, model.MovementFilter{ItemID: drill})
	if len(byItem) != 2 {
		t.Errorf("expected 2 drill movements, got %d", len(byItem))
	}
	if byItem[0].OriginName != "Site A" || byItem[0].DestinationName != "Site B" {
		t.Errorf("expected Site A -> Site B, got %q -> %q", byItem[0].OriginName, byItem[0].DestinationName)
	}
	if byItem[1].OriginName != "" {
		t.Errorf("expected first drill movement without origin, got %q", byItem[1].OriginName)
	}

	byAna, _ := ListMovementsWithNames(ctx, database, model.MovementFilter{Responsible: "Ana"})
	if len(byAna) != 2 {
		t.Errorf("expected 2 movements by Ana, got %d", len(byAna))
	}

	future, _ := ListMovementsWithNames(ctx, database, model.MovementFilter{Since: time.Now().Add(time.Hour)})
	if len(future) != 0 {
		t.Errorf("expected no movements in the future, got %d", len(future))
	}
	past, _ := ListMovementsWithNames(ctx, database, model.MovementFilter{Since: time.Now().Add(-time.Hour)})
	if len(past) != 4 {
		t.Errorf("expected 4 movements in the last hour, got %d", len(past))
	}
}

func TestGetItemView(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id := mustCreateItem(t, database, model.NewItem{Name: "Ladder", Category: model.CategoryEquipment, Status: model.ItemStatusInUse, Site: "Depot"})

	v, err := GetItemView(ctx, database, id)
	if err != nil {
		t.Fatalf("GetItemView: %v", err)
	}
	if v.SiteName != "Depot" {
		t.Errorf("expected site name 'Depot', got %q", v.SiteName)
	}

	if _, err := GetItemView(ctx, database, id+1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := GetMovementView(ctx, database, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing movement, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := mustCreateItem(t, database, model.NewItem{Name: "A", Category: model.CategoryMaterial})
	mustCreateItem(t, database, model.NewItem{Name: "B", Category: model.CategoryMaterial})
	mustCreateItem(t, database, model.NewItem{Name: "C", Category: model.CategoryMaterial, Status: model.ItemStatusMaintenance})

	RegisterMovement(ctx, database, model.NewMovement{ItemID: a, Destination: "Site", Responsible: "Ana"})
	database.MustExec(`INSERT INTO movements (item_id, destination_site, responsible, occurred_at)
		VALUES (?, 'Site', 'Ana', '2001-01-01 10:00:00')`, a)

	s, err := Summary(ctx, database, time.Now().UTC())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.TotalItems != 3 {
		t.Errorf("expected 3 items, got %d", s.TotalItems)
	}
	if s.ByStatus[model.ItemStatusAvailable] != 1 || s.ByStatus[model.ItemStatusInUse] != 1 ||
		s.ByStatus[model.ItemStatusMaintenance] != 1 || s.ByStatus[model.ItemStatusBroken] != 0 {
		t.Errorf("unexpected status counts %v", s.ByStatus)
	}
	if s.MovementsToday != 1 {
		t.Errorf("expected 1 movement today, got %d", s.MovementsToday)
	}
}
