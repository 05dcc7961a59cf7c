package goal

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type envelope struct {
	Origin string `json:"origin"`
	Goals  []Goal `json:"goals"`
}

// Bridge carries goal broadcasts between processes over a NATS subject.
type Bridge struct {
	nc      *nats.Conn
	subject string
	origin  string
	log     *zap.Logger
}

func NewBridge(nc *nats.Conn, subject string, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{nc: nc, subject: subject, origin: uuid.NewString(), log: log}
}

// Publish sends goals to the subject. Its signature matches Store.Subscribe.
func (b *Bridge) Publish(goals []Goal) {
	bs, err := json.Marshal(envelope{Origin: b.origin, Goals: goals})
	if err != nil {
		b.log.Error("encoding goals", zap.Error(err))
		return
	}
	if err := b.nc.Publish(b.subject, bs); err != nil {
		b.log.Warn("publishing goals", zap.String("subject", b.subject), zap.Error(err))
	}
}

// Listen delivers broadcasts from other processes to fn. Messages this
// bridge published itself are skipped.
func (b *Bridge) Listen(fn func([]Goal)) (*nats.Subscription, error) {
	sub, err := b.nc.Subscribe(b.subject, func(msg *nats.Msg) {
		var env envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			b.log.Warn("malformed goal broadcast", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		if env.Origin == b.origin {
			return
		}
		fn(env.Goals)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", b.subject, err)
	}
	// make sure the server knows about the subscription before returning
	if err := b.nc.Flush(); err != nil {
		sub.Unsubscribe()
		return nil, fmt.Errorf("subscribing to %s: %w", b.subject, err)
	}
	return sub, nil
}

// Attach publishes every write made through s.
func (b *Bridge) Attach(s *Store) (detach func()) {
	return s.Subscribe(b.Publish)
}
