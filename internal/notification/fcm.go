// Package notification delivers push notifications through Firebase Cloud
// Messaging.
package notification

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/latroca/latroca-api/internal/metrics"
)

const chatChannel = "chat_notifications"

// Sender sends FCM messages to registered device tokens.
type Sender struct {
	client *messaging.Client
}

// New initializes the Firebase app from a service-account credentials file
// and returns a Sender. credentialsFile may be empty, in which case the
// SDK falls back to application default credentials.
func New(ctx context.Context, credentialsFile string) (*Sender, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("notification: init firebase: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("notification: init messaging: %w", err)
	}
	return &Sender{client: client}, nil
}

// ChatMessage describes a chat notification to deliver.
type ChatMessage struct {
	Token      string
	ChatID     string
	SenderID   string
	SenderName string
	Text       string
}

// SendChatNotification notifies the receiver's device that a chat message
// arrived. The data payload lets the app route the tap to the right chat.
func (s *Sender) SendChatNotification(ctx context.Context, m ChatMessage) error {
	if m.Token == "" {
		return nil
	}

	msg := &messaging.Message{
		Token: m.Token,
		Notification: &messaging.Notification{
			Title: fmt.Sprintf("%s te ha enviado un mensaje", m.SenderName),
			Body:  m.Text,
		},
		Data: map[string]string{
			"type":        "chat_message",
			"chatId":      m.ChatID,
			"senderId":    m.SenderID,
			"senderName":  m.SenderName,
			"messageText": m.Text,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: chatChannel,
			},
		},
	}

	if _, err := s.client.Send(ctx, msg); err != nil {
		metrics.NotificationsTotal.WithLabelValues("error").Inc()
		log.Printf("[notification] fcm send chat %s: %v", m.ChatID, err)
		return fmt.Errorf("notification: fcm send: %w", err)
	}
	metrics.NotificationsTotal.WithLabelValues("ok").Inc()
	return nil
}
