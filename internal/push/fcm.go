package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/logger"
)

// topicClient is the part of the FCM client the sender uses.
type topicClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TopicSender pushes notifications to every device subscribed to one FCM
// topic.
type TopicSender struct {
	client topicClient
	topic  string
}

// NewTopicSender initializes a Firebase app from a service account file.
func NewTopicSender(ctx context.Context, credentialsFile, topic string) (*TopicSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase messaging: %w", err)
	}
	return newTopicSender(client, topic), nil
}

func newTopicSender(client topicClient, topic string) *TopicSender {
	return &TopicSender{client: client, topic: topic}
}

func (s *TopicSender) Push(ctx context.Context, note *domain.Notification) error {
	msg := buildMessage(s.topic, note)

	logger.ExternalServiceCall("FCM", "Send", "topic", s.topic, "type", note.Type)
	id, err := s.client.Send(ctx, msg)
	logger.ExternalServiceResult("FCM", "Send", err, "topic", s.topic, "message_id", id)
	if err != nil {
		return fmt.Errorf("push to topic %s: %w", s.topic, err)
	}
	return nil
}

// buildMessage flattens the notification into FCM data. Metadata never
// overrides the reserved keys.
func buildMessage(topic string, note *domain.Notification) *messaging.Message {
	data := make(map[string]string, len(note.Metadata)+4)
	for k, v := range note.Metadata {
		data[k] = v
	}
	data["notification_id"] = note.ID
	data["module"] = note.Module
	data["entity_id"] = note.EntityID
	data["type"] = note.Type

	return &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: note.Title,
			Body:  note.Message,
		},
		Data: data,
	}
}
