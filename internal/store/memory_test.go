package store

import (
	"sync"
	"testing"
	"time"
)

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() = nil")
	}

	if len(store.GetAll()) != 0 {
		t.Errorf("GetAll() = %v items, want 0", len(store.GetAll()))
	}
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore()

	store.Update(Snapshot{
		Source:    "alumnos",
		URL:       "https://example.com/alumnos",
		Threshold: 7,
		Entities: []Entity{
			{ID: "1", Name: "Ana", ScoreAverage: 8, Outcome: "passed"},
		},
		Passed:    1,
		UpdatedAt: time.Now(),
	})

	all := store.GetAll()
	if len(all) != 1 {
		t.Fatalf("GetAll() = %v items, want 1", len(all))
	}
	if all[0].Source != "alumnos" {
		t.Errorf("GetAll()[0].Source = %v, want alumnos", all[0].Source)
	}
	if all[0].Passed != 1 {
		t.Errorf("GetAll()[0].Passed = %v, want 1", all[0].Passed)
	}
}

func TestMemoryStore_UpdateReplacesWholesale(t *testing.T) {
	store := NewMemoryStore()

	store.Update(Snapshot{Source: "alumnos", Entities: []Entity{{ID: "1"}, {ID: "2"}}})
	store.Update(Snapshot{Source: "alumnos", Entities: []Entity{{ID: "3"}}})

	snap, ok := store.Get("alumnos")
	if !ok {
		t.Fatal("Get(alumnos) not found")
	}
	if len(snap.Entities) != 1 || snap.Entities[0].ID != "3" {
		t.Errorf("Entities = %+v, want only entity 3", snap.Entities)
	}
}

func TestMemoryStore_GetAllKeepsFirstReportOrder(t *testing.T) {
	store := NewMemoryStore()

	store.Update(Snapshot{Source: "docentes"})
	store.Update(Snapshot{Source: "alumnos"})
	store.Update(Snapshot{Source: "docentes", Passed: 2})

	all := store.GetAll()
	if len(all) != 2 {
		t.Fatalf("GetAll() = %v items, want 2", len(all))
	}
	if all[0].Source != "docentes" || all[1].Source != "alumnos" {
		t.Errorf("order = [%s %s], want [docentes alumnos]", all[0].Source, all[1].Source)
	}
	if all[0].Passed != 2 {
		t.Errorf("docentes Passed = %d, want latest value 2", all[0].Passed)
	}
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	store := NewMemoryStore()
	if _, ok := store.Get("missing"); ok {
		t.Error("Get(missing) ok = true, want false")
	}
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe() = nil")
	}

	go func() {
		store.Update(Snapshot{Source: "alumnos"})
	}()

	select {
	case snap := <-ch:
		if snap.Source != "alumnos" {
			t.Errorf("received Source = %v, want alumnos", snap.Source)
		}
	case <-time.After(1 * time.Second):
		t.Error("Subscribe() channel did not receive update")
	}
}

func TestMemoryStore_MultipleSubscribers(t *testing.T) {
	store := NewMemoryStore()

	ch1 := store.Subscribe()
	ch2 := store.Subscribe()
	ch3 := store.Subscribe()

	go func() {
		store.Update(Snapshot{Source: "alumnos"})
	}()

	received := 0
	timeout := time.After(1 * time.Second)

	for received < 3 {
		select {
		case <-ch1:
			received++
		case <-ch2:
			received++
		case <-ch3:
			received++
		case <-timeout:
			t.Fatalf("Only received %d/3 updates", received)
		}
	}
}

func TestMemoryStore_Unsubscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	store.Unsubscribe(ch)
	// second call is a no-op
	store.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Unsubscribe() channel should be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Unsubscribe() channel should be closed immediately")
	}
}

func TestMemoryStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Subscribe() // never read

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+50; i++ {
			store.Update(Snapshot{Source: "alumnos"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("Update() blocked on slow subscriber")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	numGoroutines := 10
	numUpdates := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				store.Update(Snapshot{Source: "alumnos", Passed: j})
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				_ = store.GetAll()
				_, _ = store.Get("alumnos")
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := store.Subscribe()
			time.Sleep(10 * time.Millisecond)
			store.Unsubscribe(ch)
		}()
	}

	wg.Wait()
}
