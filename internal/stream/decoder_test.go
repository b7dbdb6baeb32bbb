package stream

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name         string
		buf          string
		wantNames    []string
		wantConsumed int
	}{
		{
			name:         "single named block",
			buf:          "event: run\ndata: {\"stage\":\"start\"}\n\n",
			wantNames:    []string{"run"},
			wantConsumed: len("event: run\ndata: {\"stage\":\"start\"}\n\n"),
		},
		{
			name:         "missing event line defaults to message",
			buf:          "data: {\"a\":1}\n\n",
			wantNames:    []string{DefaultEventName},
			wantConsumed: len("data: {\"a\":1}\n\n"),
		},
		{
			name:         "block without data is dropped",
			buf:          "event: ping\n\nevent: run\ndata: {}\n\n",
			wantNames:    []string{"run"},
			wantConsumed: len("event: ping\n\nevent: run\ndata: {}\n\n"),
		},
		{
			name:         "malformed payload is dropped and the rest still decodes",
			buf:          "event: task\ndata: {not json\n\nevent: run\ndata: {\"stage\":\"final\"}\n\n",
			wantNames:    []string{"run"},
			wantConsumed: len("event: task\ndata: {not json\n\nevent: run\ndata: {\"stage\":\"final\"}\n\n"),
		},
		{
			name:         "non object payload is dropped",
			buf:          "data: [DONE]\n\ndata: 42\n\n",
			wantNames:    nil,
			wantConsumed: len("data: [DONE]\n\ndata: 42\n\n"),
		},
		{
			name:         "trailing partial block is left unconsumed",
			buf:          "event: run\ndata: {}\n\nevent: task\ndata: {\"task_id\":",
			wantNames:    []string{"run"},
			wantConsumed: len("event: run\ndata: {}\n\n"),
		},
		{
			name:         "block without terminator is not decoded",
			buf:          "event: run\ndata: {}\n",
			wantNames:    nil,
			wantConsumed: 0,
		},
		{
			name:         "crlf line endings",
			buf:          "event: run\r\ndata: {\"x\":true}\r\n\r\n",
			wantNames:    []string{"run"},
			wantConsumed: len("event: run\r\ndata: {\"x\":true}\r\n\r\n"),
		},
		{
			name:         "comments and unknown fields are ignored",
			buf:          ": keep-alive\nid: 7\nretry: 1000\nevent: task\ndata: {}\n\n",
			wantNames:    []string{"task"},
			wantConsumed: len(": keep-alive\nid: 7\nretry: 1000\nevent: task\ndata: {}\n\n"),
		},
		{
			name:         "duplicate names are kept",
			buf:          "event: delta\ndata: {\"t\":\"a\"}\n\nevent: delta\ndata: {\"t\":\"a\"}\n\n",
			wantNames:    []string{"delta", "delta"},
			wantConsumed: len("event: delta\ndata: {\"t\":\"a\"}\n\nevent: delta\ndata: {\"t\":\"a\"}\n\n"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, consumed := Decode([]byte(tt.buf))

			var names []string
			for _, ev := range events {
				names = append(names, ev.Name)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantConsumed, consumed)
		})
	}
}

func TestDecodeWellFormedSequence(t *testing.T) {
	for _, n := range []int{1, 2, 5, 20} {
		t.Run(fmt.Sprintf("%d blocks", n), func(t *testing.T) {
			var b strings.Builder
			for i := 0; i < n; i++ {
				if i%2 == 0 {
					fmt.Fprintf(&b, "event: task\n")
				}
				fmt.Fprintf(&b, "data: {\"seq\":%d}\n\n", i)
			}

			events, consumed := Decode([]byte(b.String()))
			require.Len(t, events, n)
			assert.Equal(t, b.Len(), consumed)

			for i, ev := range events {
				want := DefaultEventName
				if i%2 == 0 {
					want = "task"
				}
				assert.Equal(t, want, ev.Name)
				assert.EqualValues(t, i, ev.Data["seq"])
			}
		})
	}
}

func TestDecodeAcrossFills(t *testing.T) {
	full := "event: run\ndata: {\"stage\":\"start\"}\n\nevent: task\ndata: {\"task_id\":\"t1\"}\n\n"

	for split := 1; split < len(full); split++ {
		var pending []byte
		var got []Event

		for _, part := range []string{full[:split], full[split:]} {
			pending = append(pending, part...)
			events, consumed := Decode(pending)
			got = append(got, events...)
			pending = pending[consumed:]
		}

		require.Len(t, got, 2, "split at %d", split)
		assert.Equal(t, "start", got[0].String("stage"))
		assert.Equal(t, "t1", got[1].String("task_id"))
		assert.Empty(t, pending)
	}
}
