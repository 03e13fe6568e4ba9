package session

import (
	"testing"

	"github.com/travelguru/rentgate/internal/model"
)

func TestStore_InitialState_IsLoading(t *testing.T) {
	store := NewStore()

	snap := store.Current()
	if !snap.Loading {
		t.Error("initial state should be loading")
	}
	if snap.Session != nil {
		t.Error("initial state should have no session")
	}
}

func TestStore_Subscribe_InvokedImmediatelyWithCurrentState(t *testing.T) {
	store := NewStore()

	var got []Snapshot
	unsubscribe := store.Subscribe(func(s Snapshot) {
		got = append(got, s)
	})
	defer unsubscribe()

	if len(got) != 1 {
		t.Fatalf("expected 1 immediate callback, got %d", len(got))
	}
	if !got[0].Loading {
		t.Error("immediate callback should carry loading=true")
	}
}

func TestStore_FirstSet_ClearsLoading(t *testing.T) {
	store := NewStore()

	// 最初の通知が「セッションなし」でもloadingは解除される
	store.Set(nil)

	snap := store.Current()
	if snap.Loading {
		t.Error("loading should be cleared after first Set")
	}
	if snap.Session != nil {
		t.Error("session should remain absent")
	}
}

func TestStore_SubsequentSet_ReplacesSession(t *testing.T) {
	store := NewStore()
	store.Set(nil)

	sess := &model.Session{ID: "s1", UserID: "u1", Email: "user@example.com"}
	store.Set(sess)

	snap := store.Current()
	if snap.Loading {
		t.Error("loading should stay cleared")
	}
	if snap.Session == nil || snap.Session.ID != "s1" {
		t.Errorf("session = %+v, want s1", snap.Session)
	}

	// サインアウトでセッションは再びnilになる
	store.Set(nil)
	if store.Current().Session != nil {
		t.Error("session should be absent after sign-out")
	}
}

func TestStore_Subscribe_NotifiedOnEveryChange(t *testing.T) {
	store := NewStore()

	var got []Snapshot
	unsubscribe := store.Subscribe(func(s Snapshot) {
		got = append(got, s)
	})
	defer unsubscribe()

	store.Set(&model.Session{ID: "s1"})
	store.Set(&model.Session{ID: "s2"})
	store.Set(nil)

	// 登録時の1回 + 変更3回
	if len(got) != 4 {
		t.Fatalf("expected 4 callbacks, got %d", len(got))
	}
	if got[1].Session == nil || got[1].Session.ID != "s1" {
		t.Errorf("second callback session = %+v, want s1", got[1].Session)
	}
	if got[3].Session != nil {
		t.Error("last callback should carry absent session")
	}
}

func TestStore_Unsubscribe_StopsNotifications(t *testing.T) {
	store := NewStore()

	count := 0
	unsubscribe := store.Subscribe(func(s Snapshot) {
		count++
	})

	unsubscribe()
	store.Set(&model.Session{ID: "s1"})

	if count != 1 {
		t.Errorf("expected only the immediate callback, got %d", count)
	}
}

func TestStore_MultipleSubscribers_AllNotified(t *testing.T) {
	store := NewStore()

	countA, countB := 0, 0
	unsubA := store.Subscribe(func(s Snapshot) { countA++ })
	unsubB := store.Subscribe(func(s Snapshot) { countB++ })
	defer unsubA()
	defer unsubB()

	store.Set(&model.Session{ID: "s1"})

	if countA != 2 || countB != 2 {
		t.Errorf("countA = %d, countB = %d, want 2 each", countA, countB)
	}
}
