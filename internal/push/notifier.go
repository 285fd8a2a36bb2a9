package push

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/evenly-app/evenly/internal/store"
)

// Notifier fans a notification out to every device registered in a
// household. Expired subscriptions are pruned as they are discovered.
type Notifier struct {
	service *Service
	subs    *store.PushStore
	logger  *slog.Logger
}

func NewNotifier(service *Service, subs *store.PushStore, logger *slog.Logger) *Notifier {
	return &Notifier{
		service: service,
		subs:    subs,
		logger:  logger.With("component", "push"),
	}
}

// Broadcast sends the payload to every subscription in the household.
// A send failure on one device does not stop delivery to the others; the
// first non-expiry error is returned after all devices were tried.
func (n *Notifier) Broadcast(householdID int64, title, body, tag string) error {
	subs, err := n.subs.ListByHousehold(householdID)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return fmt.Errorf("household %d has no push subscriptions", householdID)
	}

	payload := Payload{Title: title, Body: body, Tag: tag}

	var firstErr error
	for i := range subs {
		sub := &subs[i]
		err := n.service.Send(sub, payload)
		if errors.Is(err, ErrExpired) {
			if delErr := n.subs.DeleteByEndpoint(sub.Endpoint); delErr != nil {
				n.logger.Warn("prune expired subscription", "error", delErr)
			}
			continue
		}
		if err != nil {
			n.logger.Warn("push send failed", "household_id", householdID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
