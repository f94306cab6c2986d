package agent

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
)

// BedrockAPI is the subset of the Bedrock agent runtime client used here.
type BedrockAPI interface {
	InvokeAgent(ctx context.Context, params *bedrockagentruntime.InvokeAgentInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.InvokeAgentOutput, error)
}

// eventReader is satisfied by *bedrockagentruntime.InvokeAgentEventStream.
type eventReader interface {
	Events() <-chan types.ResponseStream
	Close() error
	Err() error
}

// BedrockInvoker talks to Amazon Bedrock Agents.
type BedrockInvoker struct {
	client BedrockAPI
}

// NewBedrockInvoker wraps a Bedrock agent runtime client.
func NewBedrockInvoker(client BedrockAPI) *BedrockInvoker {
	return &BedrockInvoker{client: client}
}

// NewBedrockClient builds the SDK client from shared AWS configuration.
func NewBedrockClient(cfg aws.Config) *bedrockagentruntime.Client {
	return bedrockagentruntime.NewFromConfig(cfg)
}

// Invoke starts an agent turn and returns its completion stream.
func (b *BedrockInvoker) Invoke(ctx context.Context, in InvokeInput) (Stream, error) {
	out, err := b.client.InvokeAgent(ctx, &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(in.AgentID),
		AgentAliasId: aws.String(in.AliasID),
		SessionId:    aws.String(in.SessionID),
		InputText:    aws.String(in.InputText),
		MemoryId:     aws.String(in.MemoryID),
		EndSession:   aws.Bool(in.EndSession),
		EnableTrace:  aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("invoke agent: %w", err)
	}
	stream := out.GetStream()
	if stream == nil {
		return nil, fmt.Errorf("invoke agent: no completion stream")
	}
	return newEventStream(stream), nil
}

type eventStream struct {
	reader eventReader
}

func newEventStream(reader eventReader) *eventStream {
	return &eventStream{reader: reader}
}

// Recv returns the next chunk payload. Trace, return-control and file events
// carry no completion text and are skipped.
func (s *eventStream) Recv() ([]byte, error) {
	for event := range s.reader.Events() {
		if chunk, ok := event.(*types.ResponseStreamMemberChunk); ok {
			return chunk.Value.Bytes, nil
		}
	}
	if err := s.reader.Err(); err != nil {
		return nil, fmt.Errorf("agent stream: %w", err)
	}
	return nil, io.EOF
}

func (s *eventStream) Close() error {
	return s.reader.Close()
}
