package boost

import (
	"fmt"
	"log/slog"

	"github.com/evenly-app/evenly/internal/model"
)

// Item is an occurrence joined with the task fields a notification needs.
type Item struct {
	model.Occurrence
	TaskTitle string `json:"task_title"`
}

// Channel delivers a boost over one transport. Implementations must be
// independent: one channel failing never blocks another.
type Channel interface {
	Name() string
	Send(item Item, tier Tier) error
}

// Message renders the notification title and body for a tier.
func Message(item Item, tier Tier) (title, body string) {
	switch tier {
	case Tier24h:
		title = "Chore due tomorrow"
	case Tier2h:
		title = "Chore due soon"
	case TierOverdue:
		title = "Chore overdue"
	default:
		title = "Chore reminder"
	}
	body = item.TaskTitle
	if item.DueAt != nil {
		body = fmt.Sprintf("%s (due %s)", item.TaskTitle, item.DueAt.Format("Mon 15:04"))
	}
	return title, body
}

// PushBroadcaster fans a web-push payload out to a household's registered
// devices.
type PushBroadcaster interface {
	Broadcast(householdID int64, title, body, tag string) error
}

type pushChannel struct {
	broadcaster PushBroadcaster
}

func NewPushChannel(b PushBroadcaster) Channel {
	return &pushChannel{broadcaster: b}
}

func (c *pushChannel) Name() string { return model.ChannelPush }

func (c *pushChannel) Send(item Item, tier Tier) error {
	title, body := Message(item, tier)
	tag := fmt.Sprintf("boost-%d-%s", item.ID, tier)
	return c.broadcaster.Broadcast(item.HouseholdID, title, body, tag)
}

// EmailSender sends one boost email.
type EmailSender interface {
	SendBoost(to, subject, body string) error
}

// RecipientSource lists the email addresses of a household's users.
type RecipientSource interface {
	HouseholdEmails(householdID int64) ([]string, error)
}

type emailChannel struct {
	sender     EmailSender
	recipients RecipientSource
}

func NewEmailChannel(sender EmailSender, recipients RecipientSource) Channel {
	return &emailChannel{sender: sender, recipients: recipients}
}

func (c *emailChannel) Name() string { return model.ChannelEmail }

func (c *emailChannel) Send(item Item, tier Tier) error {
	emails, err := c.recipients.HouseholdEmails(item.HouseholdID)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}
	title, body := Message(item, tier)

	var firstErr error
	for _, addr := range emails {
		if err := c.sender.SendBoost(addr, title, body); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// logChannel records the attempt without transmitting anything. Used for
// whatsapp and sms, whose outbound gateways live outside this service; the
// delivery-attempt log row is the hand-off point.
type logChannel struct {
	name   string
	logger *slog.Logger
}

func NewLogChannel(name string, logger *slog.Logger) Channel {
	return &logChannel{name: name, logger: logger}
}

func (c *logChannel) Name() string { return c.name }

func (c *logChannel) Send(item Item, tier Tier) error {
	title, body := Message(item, tier)
	c.logger.Info("boost queued for external gateway",
		"channel", c.name, "occurrence_id", item.ID, "tier", tier.String(),
		"title", title, "body", body)
	return nil
}
