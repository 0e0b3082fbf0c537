package store

import (
	"context"
	"testing"
	"time"
)

func TestClientCreateAndGet(t *testing.T) {
	cs := NewClientStore(setupStoreTestDB(t))
	ctx := context.Background()

	c, err := cs.Create(ctx, "Jane Smith", "Alex")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == 0 {
		t.Fatal("expected id to be assigned")
	}

	got, err := cs.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected client, got nil")
	}
	if got.FullName != "Jane Smith" {
		t.Errorf("name = %q, want %q", got.FullName, "Jane Smith")
	}
	if got.Stage != "new" {
		t.Errorf("stage = %q, want %q", got.Stage, "new")
	}
	if got.AssignedRep != "Alex" {
		t.Errorf("assigned_rep = %q, want %q", got.AssignedRep, "Alex")
	}
	if !got.Created.Equal(c.Created) {
		t.Errorf("created = %v, want %v", got.Created, c.Created)
	}
}

func TestClientNotFound(t *testing.T) {
	cs := NewClientStore(setupStoreTestDB(t))
	got, err := cs.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil for non-existent client")
	}
}

func TestClientListOrderingAndWindow(t *testing.T) {
	cs := NewClientStore(setupStoreTestDB(t))
	cs.now = fixedClock(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for _, name := range []string{"Oldest", "Middle", "Newest"} {
		createClient(t, cs, name)
	}

	all, err := cs.List(ctx, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Newest", "Middle", "Oldest"}
	if len(all) != len(want) {
		t.Fatalf("got %d clients, want %d", len(all), len(want))
	}
	for i, name := range want {
		if all[i].Name != name {
			t.Errorf("clients[%d] = %q, want %q", i, all[i].Name, name)
		}
	}

	page, err := cs.List(ctx, 1, 1)
	if err != nil {
		t.Fatalf("list window: %v", err)
	}
	if len(page) != 1 || page[0].Name != "Middle" {
		t.Errorf("window = %+v, want [Middle]", page)
	}
}

func TestClientListTieBreaksOnID(t *testing.T) {
	cs := NewClientStore(setupStoreTestDB(t))
	same := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	cs.now = func() time.Time { return same }

	first := createClient(t, cs, "First")
	second := createClient(t, cs, "Second")

	all, err := cs.List(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Errorf("order = %+v, want second then first", all)
	}
}

func TestClientSearch(t *testing.T) {
	cs := NewClientStore(setupStoreTestDB(t))
	cs.now = fixedClock(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	jane := createClient(t, cs, "Jane Smith")
	createClient(t, cs, "Bob Jones")
	john := createClient(t, cs, "JOHN SMITHERS")
	createClient(t, cs, "100% Real Estate")

	got, err := cs.SearchByName(ctx, "smith")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].ID != john.ID || got[1].ID != jane.ID {
		t.Errorf("matches = %+v, want John then Jane", got)
	}

	got, err = cs.SearchByName(ctx, "0%")
	if err != nil {
		t.Fatalf("search literal: %v", err)
	}
	if len(got) != 1 || got[0].Name != "100% Real Estate" {
		t.Errorf("literal %% search = %+v", got)
	}

	got, err = cs.SearchByName(ctx, "_")
	if err != nil {
		t.Fatalf("search underscore: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("underscore should match literally, got %+v", got)
	}

	byID, err := cs.SearchByID(ctx, jane.ID)
	if err != nil {
		t.Fatalf("search by id: %v", err)
	}
	if len(byID) != 1 || byID[0].Name != "Jane Smith" {
		t.Errorf("by id = %+v, want Jane Smith", byID)
	}
}

func TestClientSearchNonASCII(t *testing.T) {
	cs := NewClientStore(setupStoreTestDB(t))
	ctx := context.Background()

	emile := createClient(t, cs, "Émile Zoë")
	createClient(t, cs, "Emile Zoe")

	for _, text := range []string{"émile", "ZOË", "Émile Zoë", "mile zo"} {
		got, err := cs.SearchByName(ctx, text)
		if err != nil {
			t.Fatalf("search %q: %v", text, err)
		}
		found := false
		for _, c := range got {
			if c.ID == emile.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("search %q = %+v, want Émile Zoë", text, got)
		}
	}

	got, err := cs.SearchByName(ctx, "zoë")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ID != emile.ID {
		t.Errorf("search zoë = %+v, want only Émile Zoë", got)
	}
}
