package agent

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/stretchr/testify/require"
)

func TestCollectConcatenatesInOrder(t *testing.T) {
	stream := NewSliceStream([]byte("Hello, "), []byte("world!"))

	got, err := Collect(stream)
	require.NoError(t, err)
	require.Equal(t, "Hello, world!", got)
	require.True(t, stream.Closed())
}

func TestCollectEmptyStream(t *testing.T) {
	got, err := Collect(NewSliceStream())
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestCollectMultibyteAcrossChunks(t *testing.T) {
	euro := []byte("€")
	got, err := Collect(NewSliceStream([]byte("price: "), euro[:1], euro[1:]))
	require.NoError(t, err)
	require.Equal(t, "price: €", got)
}

func TestCollectRejectsInvalidUTF8(t *testing.T) {
	_, err := Collect(NewSliceStream([]byte("ok"), []byte{0xff, 0xfe}))
	require.ErrorIs(t, err, ErrInvalidUTF8)
}

type failingStream struct {
	sent   bool
	closed bool
}

func (f *failingStream) Recv() ([]byte, error) {
	if !f.sent {
		f.sent = true
		return []byte("partial"), nil
	}
	return nil, errors.New("connection reset")
}

func (f *failingStream) Close() error {
	f.closed = true
	return nil
}

func TestCollectSurfacesStreamErrors(t *testing.T) {
	stream := &failingStream{}
	got, err := Collect(stream)
	require.Error(t, err)
	require.Empty(t, got)
	require.True(t, stream.closed)
}

type fakeReader struct {
	events chan types.ResponseStream
	err    error
	closed bool
}

func newFakeReader(err error, events ...types.ResponseStream) *fakeReader {
	ch := make(chan types.ResponseStream, len(events))
	for _, e := range events {
		ch <- e
	}
	close(ch)
	return &fakeReader{events: ch, err: err}
}

func (f *fakeReader) Events() <-chan types.ResponseStream { return f.events }
func (f *fakeReader) Close() error { f.closed = true; return nil }
func (f *fakeReader) Err() error { return f.err }

func chunk(s string) types.ResponseStream {
	return &types.ResponseStreamMemberChunk{Value: types.PayloadPart{Bytes: []byte(s)}}
}

func TestEventStreamSkipsNonChunkEvents(t *testing.T) {
	reader := newFakeReader(nil,
		chunk("Hello, "),
		&types.ResponseStreamMemberTrace{},
		chunk("world!"),
	)

	got, err := Collect(newEventStream(reader))
	require.NoError(t, err)
	require.Equal(t, "Hello, world!", got)
	require.True(t, reader.closed)
}

func TestEventStreamReportsReaderError(t *testing.T) {
	boom := errors.New("ThrottlingException")
	stream := newEventStream(newFakeReader(boom, chunk("partial")))

	first, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "partial", string(first))

	_, err = stream.Recv()
	require.ErrorIs(t, err, boom)
}

func TestEventStreamEOF(t *testing.T) {
	stream := newEventStream(newFakeReader(nil))
	_, err := stream.Recv()
	require.ErrorIs(t, err, io.EOF)
}

type recordingBedrock struct {
	input *bedrockagentruntime.InvokeAgentInput
	err   error
}

func (r *recordingBedrock) InvokeAgent(_ context.Context, in *bedrockagentruntime.InvokeAgentInput, _ ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.InvokeAgentOutput, error) {
	r.input = in
	return nil, r.err
}

func TestBedrockInvokerBuildsRequest(t *testing.T) {
	rec := &recordingBedrock{err: errors.New("AccessDeniedException")}
	invoker := NewBedrockInvoker(rec)

	_, err := invoker.Invoke(context.Background(), InvokeInput{
		AgentID:    "agent-1",
		AliasID:    "alias-1",
		SessionID:  "session-1",
		InputText:  "Hello!",
		MemoryID:   "memory-abc",
		EndSession: true,
	})
	require.ErrorIs(t, err, rec.err)

	require.NotNil(t, rec.input)
	require.Equal(t, "agent-1", aws.ToString(rec.input.AgentId))
	require.Equal(t, "alias-1", aws.ToString(rec.input.AgentAliasId))
	require.Equal(t, "session-1", aws.ToString(rec.input.SessionId))
	require.Equal(t, "Hello!", aws.ToString(rec.input.InputText))
	require.Equal(t, "memory-abc", aws.ToString(rec.input.MemoryId))
	require.True(t, aws.ToBool(rec.input.EndSession))
	require.False(t, aws.ToBool(rec.input.EnableTrace))
}
