package stream

import (
	"strings"

	"github.com/bytedance/sonic"
)

// DefaultEventName names blocks that carry no event: line
const DefaultEventName = "message"

const (
	eventPrefix = "event:"
	dataPrefix  = "data:"
)

// Event is one named, payload-bearing unit decoded from a run stream
type Event struct {
	Name string
	Data map[string]any
}

// String returns the payload field key when it is a string
func (e Event) String(key string) string {
	if v, ok := e.Data[key].(string); ok {
		return v
	}
	return ""
}

// Decode decodes every blank-line terminated block in buf, in order.
// It returns the decoded events and the number of bytes consumed; buf[consumed:]
// is an unterminated partial block that must be kept for the next fill.
// Blocks without a data: line and blocks whose payload is not a JSON object are dropped.
func Decode(buf []byte) ([]Event, int) {
	var events []Event
	consumed := 0
	for {
		end, next := blockBoundary(buf[consumed:])
		if end < 0 {
			break
		}
		if ev, ok := decodeBlock(buf[consumed : consumed+end]); ok {
			events = append(events, ev)
		}
		consumed += next
	}
	return events, consumed
}

// blockBoundary finds the first blank line in b. It returns the length of the
// block before it and the offset just past the terminator, or -1, -1.
func blockBoundary(b []byte) (int, int) {
	for i := 0; i < len(b); i++ {
		if b[i] != '\n' {
			continue
		}
		j := i + 1
		if j < len(b) && b[j] == '\r' {
			j++
		}
		if j < len(b) && b[j] == '\n' {
			return i, j + 1
		}
	}
	return -1, -1
}

func decodeBlock(block []byte) (Event, bool) {
	name := ""
	var data string
	hasData := false

	for _, line := range strings.Split(string(block), "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, eventPrefix):
			if name == "" {
				name = strings.TrimSpace(strings.TrimPrefix(line, eventPrefix))
			}
		case strings.HasPrefix(line, dataPrefix):
			if !hasData {
				data = strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
				hasData = true
			}
		}
	}

	if !hasData || data == "" {
		return Event{}, false
	}

	var payload map[string]any
	if err := sonic.UnmarshalString(data, &payload); err != nil || payload == nil {
		return Event{}, false
	}

	if name == "" {
		name = DefaultEventName
	}
	return Event{Name: name, Data: payload}, true
}
