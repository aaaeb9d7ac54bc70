package realtime

import (
	"encoding/json"

	"chefconnect/internal/metrics"

	"github.com/sirupsen/logrus"
)

type EventType string

const (
	EventNewOrder    EventType = "NEW_ORDER"
	EventOrderUpdate EventType = "ORDER_UPDATE"
)

// プッシュするメッセージ {type, order}
type Message struct {
	Type  EventType   `json:"type"`
	Order interface{} `json:"order"`
}

// Dispatcherが使うのは参照だけ
type ChannelLookup interface {
	Lookup(userID string) (Channel, bool)
}

// Dispatcher は注文の状態変化を当事者へ送る。送れるなら送る、無理なら捨てる。
// 再送もキューもない。正はHTTPの取得APIの方。
type Dispatcher struct {
	channels ChannelLookup
	logger   *logrus.Logger
	metrics  *metrics.Metrics
}

func NewDispatcher(channels ChannelLookup, logger *logrus.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{channels: channels, logger: logger, metrics: m}
}

// Notify はエラーを返さない。呼び出し側の遷移は既に成功しているため。
func (d *Dispatcher) Notify(event EventType, order interface{}, recipients ...string) {
	if len(recipients) == 0 {
		return
	}

	var payload []byte
	seen := make(map[string]struct{}, len(recipients))

	for _, userID := range recipients {
		if userID == "" {
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		ch, ok := d.channels.Lookup(userID)
		if !ok {
			d.metrics.Notification(string(event), metrics.ResultOffline)
			continue
		}

		//接続中の相手がいるときだけシリアライズ
		if payload == nil {
			b, err := json.Marshal(Message{Type: event, Order: order})
			if err != nil {
				d.logger.WithError(err).WithField("event", event).Error("notification marshal failed")
				return
			}
			payload = b
		}

		if err := ch.Send(payload); err != nil {
			d.metrics.Notification(string(event), metrics.ResultDropped)
			d.logger.WithError(err).WithFields(logrus.Fields{
				"event":   event,
				"user_id": userID,
			}).Warn("notification dropped")
			continue
		}
		d.metrics.Notification(string(event), metrics.ResultSent)
	}
}
