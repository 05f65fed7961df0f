package database

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-finance/core"
)

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// Listen subscribes to conf.Finance.NotifyChannel and calls onChange once per burst of notifications.
// A burst ends when no notification arrived for conf.Finance.NotifyDebounce.
// onChange is also called after the listener reconnects, since notifications may have been lost.
// Listen blocks until ctx is done.
func Listen(ctx context.Context, conf *core.Config, logger core.Logger, onChange func()) error {
	listener := pq.NewListener(
		dsn(conf.Database.Name, false, conf),
		minReconnectInterval,
		maxReconnectInterval,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				logger.Error("finance listener event", err, map[string]interface{}{"event": ev})
			}
		},
	)
	defer func() { _ = listener.Close() }()

	if err := listener.Listen(conf.Finance.NotifyChannel); err != nil {
		return errors.Wrapf(err, "listening on %q", conf.Finance.NotifyChannel)
	}
	logger.Info("listening for finance changes", map[string]interface{}{"channel": conf.Finance.NotifyChannel})

	debounce := conf.Finance.NotifyDebounce
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case n := <-listener.Notify:
			if n != nil {
				logger.Debug("finance change", map[string]interface{}{"table": n.Extra})
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(debounce)
			pending = true

		case <-timer.C:
			pending = false
			onChange()

		case <-time.After(pingInterval):
			go func() {
				if err := listener.Ping(); err != nil {
					logger.Warn("pinging finance listener", err)
				}
			}()
		}
	}
}
