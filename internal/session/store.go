// Package session はプロセス全体の認証状態を保持する観測可能なストアを提供する。
package session

import (
	"sync"

	"github.com/travelguru/rentgate/internal/model"
)

// Snapshot はストアが保持する認証状態のスナップショット。
// LoadingはIdPからの最初の状態通知が届くまでの不確定な期間だけtrueになる。
// 消費側はLoading中にセッション依存の判断をしてはならない。
type Snapshot struct {
	Session *model.Session
	Loading bool
}

// Store はプロセス内で起きた認証状態の遷移（ログイン・ログアウト）の
// 単一の情報源。書き込みは認証サービス（IdPゲートウェイ）の遷移時と
// 起動時の初期解決のみが行い、他のコンポーネントは購読による
// 読み取り専用アクセスを持つ。
// アプリケーション起動時に1回生成し、プロセス終了まで作り直さない。
type Store struct {
	mu      sync.RWMutex
	session *model.Session
	loading bool

	nextID      int
	subscribers map[int]func(Snapshot)
}

// NewStore は初期状態（loading=true, session=なし）のStoreを生成する。
func NewStore() *Store {
	return &Store{
		loading:     true,
		subscribers: make(map[int]func(Snapshot)),
	}
}

// Current は現在のスナップショットを返す。
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Session: s.session, Loading: s.loading}
}

// Set はセッション状態を置き換え、全購読者に通知する。
// 最初の呼び出しでloadingフラグを解除する。以降の呼び出しはセッションのみ置き換える。
// サインイン・サインアウト・トークンリフレッシュのいずれも同じ経路を通る。
func (s *Store) Set(session *model.Session) {
	s.mu.Lock()
	s.session = session
	s.loading = false
	snap := Snapshot{Session: s.session, Loading: s.loading}
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	// 通知はロック外で行う。コールバック内からのCurrent/Subscribe呼び出しを許容する。
	for _, fn := range subs {
		fn(snap)
	}
}

// Subscribe はリスナーを登録し、購読解除関数を返す。
// リスナーは登録時に現在のスナップショットで1回同期的に呼び出され、
// 以降は状態が変わるたびに呼び出される。初回呼び出しと変更通知は同一の
// コードパスであり、初回だけを特別扱いしてはならない。
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	snap := Snapshot{Session: s.session, Loading: s.loading}
	s.mu.Unlock()

	fn(snap)

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}
