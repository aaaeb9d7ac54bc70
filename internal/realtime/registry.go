package realtime

import (
	"errors"
	"sync"

	"chefconnect/internal/metrics"
)

var (
	// 送信バッファが満杯（破棄した）
	ErrSendBufferFull = errors.New("send buffer full")
	// 既に閉じたチャネル
	ErrChannelClosed = errors.New("channel closed")
)

// Channel はユーザー1人分のプッシュ接続。
// Sendはブロックしない。送れなければエラーを返して破棄する。
// 実装はポインタ型であること（レジストリのmapキーに使う）。
type Channel interface {
	Send(payload []byte) error
	Close()
}

// Registry は userID -> Channel の表（プロセス内のみ、永続化しない）。
// 1ユーザー1チャネル。再接続は置き換え。
type Registry struct {
	mu      sync.RWMutex
	byUser  map[string]Channel
	byChan  map[Channel]string
	metrics *metrics.Metrics
}

func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{
		byUser:  make(map[string]Channel),
		byChan:  make(map[Channel]string),
		metrics: m,
	}
}

// Register は登録/置き換え。置き換えた古いチャネルは閉じる。
// 同じチャネルの再登録は何もしない。
func (r *Registry) Register(userID string, ch Channel) {
	r.mu.Lock()
	old, had := r.byUser[userID]
	if had && old == ch {
		r.mu.Unlock()
		return
	}
	if had {
		delete(r.byChan, old)
	}
	//別ユーザーで登録済みのチャネルなら付け替える
	if prevUser, ok := r.byChan[ch]; ok {
		delete(r.byUser, prevUser)
	}
	r.byUser[userID] = ch
	r.byChan[ch] = userID
	n := len(r.byUser)
	r.mu.Unlock()

	r.metrics.SetLiveConnections(n)

	//ロック外で閉じる
	if had {
		old.Close()
	}
}

// Lookup はいなくてもエラーにしない（未接続は普通のこと）
func (r *Registry) Lookup(userID string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.byUser[userID]
	return ch, ok
}

// Unregister はチャネルが閉じたときに呼ぶ。
// 既に新しいチャネルに置き換わっていたら何もしない。
func (r *Registry) Unregister(ch Channel) {
	r.mu.Lock()
	userID, ok := r.byChan[ch]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.byChan, ch)
	if cur, exists := r.byUser[userID]; exists && cur == ch {
		delete(r.byUser, userID)
	}
	n := len(r.byUser)
	r.mu.Unlock()

	r.metrics.SetLiveConnections(n)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
