package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/stylist/internal/images"
	"github.com/lehigh-university-libraries/stylist/internal/studio"
)

func TestSessionStore(t *testing.T) {
	store := New()

	session := store.Create(studio.OriginAPI)
	got, ok := store.Get(session.ID)
	if !ok || got != session {
		t.Fatalf("Expected to find session %s", session.ID)
	}

	if _, ok := store.Get("missing"); ok {
		t.Error("Expected missing session lookup to fail")
	}

	other := store.Create(studio.OriginAPI)
	if len(store.GetAll()) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(store.GetAll()))
	}

	store.Delete(session.ID)
	if _, ok := store.Get(session.ID); ok {
		t.Error("Expected session to be deleted")
	}
	if _, ok := store.Get(other.ID); !ok {
		t.Error("Expected other session to survive")
	}
}

func TestSessionStoreGetAllIsACopy(t *testing.T) {
	store := New()
	store.Create(studio.OriginAPI)

	all := store.GetAll()
	for id := range all {
		delete(all, id)
	}
	if len(store.GetAll()) != 1 {
		t.Error("Expected GetAll to return a copy")
	}
}

func TestSessionStoreConcurrentAccess(t *testing.T) {
	store := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := store.Create(studio.OriginAPI)
			store.Get(s.ID)
			store.GetAll()
		}()
	}
	wg.Wait()

	if len(store.GetAll()) != 50 {
		t.Errorf("Expected 50 sessions, got %d", len(store.GetAll()))
	}
}

func TestSessionStorePrune(t *testing.T) {
	store := New()
	idle := store.Create(studio.OriginBrowser)

	busy := store.Create(studio.OriginBrowser)
	if err := busy.SelectImage(images.Asset{MIMEType: images.MIMEPNG, Data: []byte("png")}); err != nil {
		t.Fatal(err)
	}
	busy.SetPrompt("Add a hat")
	if _, err := busy.Begin(nil); err != nil {
		t.Fatal(err)
	}

	time.Sleep(50 * time.Millisecond)
	fresh := store.Create(studio.OriginAPI)

	if n := store.Prune(25 * time.Millisecond); n != 1 {
		t.Errorf("Expected 1 session pruned, got %d", n)
	}
	if _, ok := store.Get(idle.ID); ok {
		t.Error("Expected the idle session to be pruned")
	}
	if _, ok := store.Get(busy.ID); !ok {
		t.Error("Expected the loading session to survive")
	}
	if _, ok := store.Get(fresh.ID); !ok {
		t.Error("Expected the recent session to survive")
	}
}
