package observability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

const (
	defaultBatchSize  = 256
	// Oldest entries are dropped once this many batches back up.
	maxPendingBatches = 4
	putTimeout        = 5 * time.Second
	streamPrefix      = "app-"
	streamDateLayout  = "2006-01-02"
)

// CloudWatchAPI is the subset of the CloudWatch Logs client used for shipping.
type CloudWatchAPI interface {
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// CloudWatchWriter buffers encoded log entries and ships them to a daily
// stream in a CloudWatch Logs group. It satisfies zapcore.WriteSyncer.
type CloudWatchWriter struct {
	client    CloudWatchAPI
	group     string
	batchSize int
	now       func() time.Time

	mu      sync.Mutex
	pending []types.InputLogEvent
	created map[string]bool
}

// NewCloudWatchWriter returns a writer shipping to group.
func NewCloudWatchWriter(client CloudWatchAPI, group string) *CloudWatchWriter {
	return &CloudWatchWriter{
		client:    client,
		group:     group,
		batchSize: defaultBatchSize,
		now:       time.Now,
		created:   make(map[string]bool),
	}
}

// NewCloudWatchClient builds the SDK client from shared AWS configuration.
func NewCloudWatchClient(cfg aws.Config) *cloudwatchlogs.Client {
	return cloudwatchlogs.NewFromConfig(cfg)
}

// StreamName is the stream entries written at t belong to.
func StreamName(t time.Time) string {
	return streamPrefix + t.UTC().Format(streamDateLayout)
}

// Write queues one encoded entry. A full buffer is flushed synchronously.
func (w *CloudWatchWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	if msg == "" {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, types.InputLogEvent{
		Message:   aws.String(msg),
		Timestamp: aws.Int64(w.now().UnixMilli()),
	})
	if len(w.pending) >= w.batchSize {
		if err := w.flushLocked(); err != nil {
			return len(p), err
		}
	}
	return len(p), nil
}

// Sync ships everything buffered so far.
func (w *CloudWatchWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *CloudWatchWriter) flushLocked() error {
	if len(w.pending) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
	defer cancel()

	stream := StreamName(w.now())
	if !w.created[stream] {
		_, err := w.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
			LogGroupName:  aws.String(w.group),
			LogStreamName: aws.String(stream),
		})
		var exists *types.ResourceAlreadyExistsException
		if err != nil && !errors.As(err, &exists) {
			return fmt.Errorf("create log stream %s: %w", stream, err)
		}
		w.created[stream] = true
	}

	batch := w.pending
	_, err := w.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(w.group),
		LogStreamName: aws.String(stream),
		LogEvents:     batch,
	})
	if err != nil {
		if overflow := len(w.pending) - maxPendingBatches*w.batchSize; overflow > 0 {
			w.pending = w.pending[overflow:]
		}
		return fmt.Errorf("put log events: %w", err)
	}
	w.pending = nil
	return nil
}
