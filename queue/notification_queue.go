package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-kit/log/level"
	"github.com/hibiken/asynq"

	"github.com/cardlink/go-cardlink-server/email"
	"github.com/cardlink/go-cardlink-server/global"
	"github.com/cardlink/go-cardlink-server/metrics"
	"github.com/cardlink/go-cardlink-server/repository"
	"github.com/cardlink/go-cardlink-server/services"
	"github.com/cardlink/go-cardlink-server/types"
)

// NotificationQueue processes the email notification tasks enqueued when a
// contact is saved against a user's card
type NotificationQueue struct {
	userService *services.UserService
	env         *types.Environment
}

func NewNotificationQueue(dbSelector *repository.CouchDBSelector, env *types.Environment) *NotificationQueue {
	return &NotificationQueue{
		userService: services.NewUserService(dbSelector, env),
		env:         env,
	}
}

// ProcessEmailTask sends the "somebody saved your card" email. Malformed
// payloads and missing senders skip the retry loop; transient provider
// failures are retried by asynq.
func (nq *NotificationQueue) ProcessEmailTask(ctx context.Context, t *asynq.Task) error {
	var task types.EmailNotificationTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	if task.Entry == nil {
		return fmt.Errorf("notification task without entry: %w", asynq.SkipRetry)
	}

	to := task.OwnerEmail
	if to == "" {
		// owner email not stamped at enqueue time, resolve it now
		user, uErr := nq.userService.Get(ctx, task.OwnerAddress)
		if uErr != nil {
			level.Error(global.Logger).Log("msg", "failed to resolve notification recipient", "owner", task.OwnerAddress, "error", uErr.Error())
			return fmt.Errorf("failed to resolve recipient: %w", asynq.SkipRetry)
		}
		to = user.Email
	}

	sender := email.GetSender(global.Conf.Mailgun.Domain)
	if sender == nil {
		return fmt.Errorf("no email sender registered for domain %s: %w", global.Conf.Mailgun.Domain, asynq.SkipRetry)
	}

	subject := fmt.Sprintf("%s %s saved your card", task.Entry.Name, task.Entry.Surname)
	body := notificationBody(task.Entry)

	id, sErr := sender.Send(ctx, to, subject, body)
	if sErr != nil {
		metrics.NotificationEmailsFailedCount.Inc()
		level.Error(global.Logger).Log("msg", "failed to send notification email", "to", to, "error", sErr.Error())
		return sErr
	}
	metrics.NotificationEmailsSentCount.Inc()
	level.Info(global.Logger).Log("msg", "notification email sent", "to", to, "messageId", id)
	return nil
}

func notificationBody(entry *types.ContactEntry) string {
	body := fmt.Sprintf("%s %s saved your contact details.", entry.Name, entry.Surname)
	if entry.Phone != "" {
		body = fmt.Sprintf("%s\nPhone: %s", body, entry.Phone)
	}
	if entry.HowWeMet != "" {
		body = fmt.Sprintf("%s\nHow you met: %s", body, entry.HowWeMet)
	}
	return body
}
