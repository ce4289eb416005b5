// Package pubsub publishes notifications and settlement requests to Google
// Cloud Pub/Sub topics consumed by the push gateway and the payment service.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

const defaultPublishTimeout = 15 * time.Second

var errProjectIDRequired = errors.New("gcp project id is required")

// Publisher is the subset of *pubsub.Publisher used by the adapters.
type Publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) PublishResult
}

// PublishResult resolves to the server-assigned message id once the
// message was acknowledged by Pub/Sub.
type PublishResult interface {
	Get(ctx context.Context) (string, error)
}

// Client owns the Pub/Sub connection and the publishers created from it.
type Client struct {
	client     *gcppubsub.Client
	projectID  string
	publishers []*gcppubsub.Publisher
}

// NewClient connects to Pub/Sub for projectID. Credentials come from the
// environment (ADC or PUBSUB_EMULATOR_HOST).
func NewClient(ctx context.Context, projectID string) (*Client, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	psClient, err := gcppubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	return &Client{client: psClient, projectID: projectID}, nil
}

// Publisher returns a publisher for a topic id or full resource name.
func (c *Client) Publisher(topic string) (Publisher, error) {
	name := TopicResourceName(c.projectID, topic)
	if name == "" {
		return nil, fmt.Errorf("topic %q not configured", topic)
	}
	p := c.client.Publisher(name)
	c.publishers = append(c.publishers, p)
	return gcpPublisher{publisher: p}, nil
}

// Close flushes pending messages and releases the connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	for _, p := range c.publishers {
		p.Stop()
	}
	return c.client.Close()
}

// TopicResourceName expands a topic id to projects/<project>/topics/<id>.
// Full resource names are returned unchanged, blank input yields "".
func TopicResourceName(projectID, topic string) string {
	n := strings.TrimSpace(topic)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/") {
		return n
	}
	p := strings.TrimSpace(projectID)
	if p == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/topics/%s", p, n)
}

type gcpPublisher struct {
	publisher *gcppubsub.Publisher
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) PublishResult {
	return p.publisher.Publish(ctx, msg)
}

// publish sends msg and waits for the acknowledgement, bounded by timeout.
func publish(ctx context.Context, pub Publisher, timeout time.Duration, msg *gcppubsub.Message) error {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	publishCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := pub.Publish(publishCtx, msg).Get(publishCtx); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
