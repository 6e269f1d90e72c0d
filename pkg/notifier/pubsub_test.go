package notifier_test

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/joincivil/wavs-rewards-client/pkg/model"
	"github.com/joincivil/wavs-rewards-client/pkg/notifier"
)

const (
	testProjectID = "wavs-test"
	testTopic     = "rewards-notifications"
)

func setupNotifier(t *testing.T) (*pstest.Server, *notifier.PubSubNotifier) {
	srv := pstest.NewServer()
	t.Cleanup(func() { srv.Close() }) // nolint: errcheck
	conn, err := grpc.Dial(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("Should have dialed fake pubsub: err: %v", err)
	}
	n, err := notifier.NewPubSubNotifier(context.Background(), testProjectID, testTopic, option.WithGRPCConn(conn))
	if err != nil {
		t.Fatalf("Should have created notifier: err: %v", err)
	}
	t.Cleanup(func() { n.Close() }) // nolint: errcheck
	return srv, n
}

func TestNotify(t *testing.T) {
	srv, n := setupNotifier(t)

	err := n.Notify(context.Background(), &model.Notification{
		Type:      model.NotificationClaim,
		Account:   "0xDFe273082089bB7f70Ee36Eebcde64832FE97E55",
		Amount:    "600",
		Timestamp: 1700000000000,
	})
	if err != nil {
		t.Fatalf("Should have published notification: err: %v", err)
	}

	msgs := srv.Messages()
	if len(msgs) != 1 {
		t.Fatalf("Should have published one message: %v", len(msgs))
	}
	if msgs[0].Attributes["type"] != "claim" {
		t.Errorf("Wrong type attribute: %v", msgs[0].Attributes)
	}
	decoded := &model.Notification{}
	if err := json.Unmarshal(msgs[0].Data, decoded); err != nil {
		t.Fatalf("Should have decoded message: err: %v", err)
	}
	if decoded.Amount != "600" || decoded.Type != model.NotificationClaim || decoded.TxHash != "" {
		t.Errorf("Wrong payload: %+v", decoded)
	}
}

func TestNotifierReusesTopic(t *testing.T) {
	srv, first := setupNotifier(t)
	if err := first.Notify(context.Background(), &model.Notification{Type: model.NotificationTrigger}); err != nil {
		t.Fatalf("Should have published: err: %v", err)
	}

	conn, err := grpc.Dial(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("Should have dialed fake pubsub: err: %v", err)
	}
	second, err := notifier.NewPubSubNotifier(context.Background(), testProjectID, testTopic, option.WithGRPCConn(conn))
	if err != nil {
		t.Fatalf("Should have opened the existing topic: err: %v", err)
	}
	defer second.Close() // nolint: errcheck
	if err := second.Notify(context.Background(), &model.Notification{Type: model.NotificationMint}); err != nil {
		t.Fatalf("Should have published: err: %v", err)
	}
	if len(srv.Messages()) != 2 {
		t.Errorf("Both notifiers should publish to one topic: %v", len(srv.Messages()))
	}
}
