package service

import (
	"context"
	"time"

	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"
	"github.com/DmitriySvyatov/WalletApi/internal/core/ports"

	"github.com/rs/zerolog"
)

const publishTimeout = 2 * time.Second

// eventNotifier publishes committed changes. Publishing is best-effort: the
// change is already durable, so a failure is logged and never returned.
type eventNotifier struct {
	publisher ports.EventPublisher
	log       zerolog.Logger
}

func (n eventNotifier) notify(ctx context.Context, event domain.WalletEvent) {
	if n.publisher == nil {
		return
	}

	// Detach from the request so a client disconnect does not drop the event.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := n.publisher.Publish(pubCtx, event); err != nil {
		n.log.Warn().
			Err(err).
			Str("wallet_id", event.WalletID.String()).
			Str("event_type", string(event.Type)).
			Msg("failed to publish wallet event")
	}
}
