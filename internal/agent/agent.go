// Package agent invokes the managed conversational agent and assembles its
// streamed completion.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned when the assembled completion is not valid UTF-8 text.
var ErrInvalidUTF8 = errors.New("agent completion is not valid utf-8")

// InvokeInput carries one conversational turn.
type InvokeInput struct {
	AgentID    string
	AliasID    string
	SessionID  string
	InputText  string
	MemoryID   string
	EndSession bool
}

// Stream yields completion chunks in arrival order. Recv returns io.EOF
// after the final chunk.
type Stream interface {
	Recv() ([]byte, error)
	Close() error
}

// Invoker starts one agent turn.
type Invoker interface {
	Invoke(ctx context.Context, in InvokeInput) (Stream, error)
}

// Collect drains stream and returns the concatenated completion. The stream
// is always closed.
func Collect(stream Stream) (string, error) {
	defer stream.Close() //nolint:errcheck

	var sb strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read completion: %w", err)
		}
		sb.Write(chunk)
	}

	completion := sb.String()
	if !utf8.ValidString(completion) {
		return "", ErrInvalidUTF8
	}
	return completion, nil
}

// SliceStream replays a fixed list of chunks.
type SliceStream struct {
	chunks [][]byte
	pos    int
	closed bool
}

// NewSliceStream returns a Stream over chunks.
func NewSliceStream(chunks ...[]byte) *SliceStream {
	return &SliceStream{chunks: chunks}
}

func (s *SliceStream) Recv() ([]byte, error) {
	if s.closed || s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *SliceStream) Closed() bool {
	return s.closed
}
