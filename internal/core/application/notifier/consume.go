package notifier

import (
	"context"
	"errors"
)

// Consume subscribes clientID with filter and calls handle for every event
// until ctx is done or the notifier stops. A subscription dropped for
// overflow is replaced by a fresh one, so long-running bridges survive a
// slow downstream at the cost of the events dropped in between.
func (n *Notifier) Consume(
	ctx context.Context,
	clientID string,
	filter Filter,
	handle func(context.Context, Event),
) error {
	for {
		sub, err := n.Subscribe(clientID, filter)
		if errors.Is(err, ErrNotifierStopped) {
			return nil
		}
		if err != nil {
			return err
		}

		if err = drain(ctx, sub, handle); err == nil {
			return nil
		}
		n.logger.WarnContext(ctx, "resubscribing", "client_id", clientID, "reason", err)
	}
}

// drain returns ErrSubscriberOverflow when the subscription was dropped,
// nil when consumption should stop.
func drain(ctx context.Context, sub *Subscription, handle func(context.Context, Event)) error {
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-sub.Events():
			if !ok {
				if err := sub.Err(); errors.Is(err, ErrSubscriberOverflow) {
					return err
				}
				return nil
			}
			handle(ctx, e)
		}
	}
}
