// Package notifier publishes client notifications to Google Pub/Sub.
package notifier // import "github.com/joincivil/wavs-rewards-client/pkg/notifier"

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/pubsub"
	log "github.com/golang/glog"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/joincivil/wavs-rewards-client/pkg/model"
)

const (
	publishTimeout = 10 * time.Second

	typeAttribute = "type"
)

// NewPubSubNotifier connects to projectID and publishes to topicName. The
// topic is created if it does not exist.
func NewPubSubNotifier(ctx context.Context, projectID string, topicName string,
	opts ...option.ClientOption) (*PubSubNotifier, error) {
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "error creating pubsub client")
	}
	topic := client.Topic(topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		client.Close() // nolint: errcheck
		return nil, errors.Wrapf(err, "error checking topic %v", topicName)
	}
	if !exists {
		log.Infof("Creating pubsub topic %v", topicName)
		topic, err = client.CreateTopic(ctx, topicName)
		if err != nil {
			client.Close() // nolint: errcheck
			return nil, errors.Wrapf(err, "error creating topic %v", topicName)
		}
	}
	return &PubSubNotifier{client: client, topic: topic}, nil
}

// PubSubNotifier implements model.Notifier. Each notification is one JSON
// message with its type as an attribute.
type PubSubNotifier struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// Notify publishes n and waits for the server to accept it
func (p *PubSubNotifier) Notify(ctx context.Context, n *model.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return errors.Wrap(err, "error marshalling notification")
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{typeAttribute: string(n.Type)},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return errors.Wrapf(err, "error publishing %v notification", n.Type)
	}
	log.V(2).Infof("Published %v notification %v", n.Type, id)
	return nil
}

// Close flushes pending messages and closes the client
func (p *PubSubNotifier) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
