package types

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

var (
	QueueTypeEmailNotification = "notification:email"
)

// EmailNotificationTask notifies a card owner that somebody saved their contact
type EmailNotificationTask struct {
	OwnerAddress string        `json:"ownerAddress"` // card owner (recipient of the notification)
	OwnerEmail   string        `json:"ownerEmail"`
	Entry        *ContactEntry `json:"entry" validate:"required"`
}

func NewEmailNotificationTask(task *EmailNotificationTask) (*asynq.Task, error) {
	payload, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(QueueTypeEmailNotification, payload), nil
}
