package model

import (
	"context"
)

// NotificationType is the kind of a client notification
type NotificationType string

const (
	// NotificationClaim is published after a successful claim
	NotificationClaim NotificationType = "claim"
	// NotificationTrigger is published after a rewards update was requested
	NotificationTrigger NotificationType = "trigger"
	// NotificationRewardsUpdate is published when a new reward state is observed
	NotificationRewardsUpdate NotificationType = "rewards_update"
	// NotificationMint is published after a mint was triggered
	NotificationMint NotificationType = "mint"
)

// Notification is the payload published to observers outside the process
type Notification struct {
	Type      NotificationType `json:"type"`
	Account   string           `json:"account,omitempty"`
	TxHash    string           `json:"txHash,omitempty"`
	TriggerID string           `json:"triggerId,omitempty"`
	Amount    string           `json:"amount,omitempty"`
	ContentID string           `json:"contentId,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

// Notifier publishes client notifications
type Notifier interface {
	Notify(ctx context.Context, n *Notification) error
}
