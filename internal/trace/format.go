package trace

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick from output path's extension
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
	FormatChrome               // Chrome trace-event JSON array entries
)

// FormatEvent formats an event according to the specified format.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return formatNDJSON(ev)
	case FormatChrome:
		return formatChrome(ev)
	default:
		return formatText(ev)
	}
}

// formatNDJSON formats an event as newline-delimited JSON.
func formatNDJSON(ev *Event) []byte {
	type jsonEvent struct {
		Time     string            `json:"time"`
		Seq      uint64            `json:"seq"`
		Kind     string            `json:"kind"`
		Scope    string            `json:"scope"`
		SpanID   uint64            `json:"span_id"`
		ParentID uint64            `json:"parent_id,omitempty"`
		GID      uint64            `json:"gid,omitempty"`
		Name     string            `json:"name"`
		Detail   string            `json:"detail,omitempty"`
		Extra    map[string]string `json:"extra,omitempty"`
	}

	j := jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		GID:      ev.GID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	}

	data, _ := json.Marshal(j)
	data = append(data, '\n')
	return data
}

// formatChrome formats an event as a single Chrome trace-event object,
// without the enclosing array or trailing comma — StreamTracer handles
// the comma/bracket bookkeeping around each call.
func formatChrome(ev *Event) []byte {
	type chromeEvent struct {
		Name string            `json:"name"`
		Cat  string            `json:"cat"`
		Ph   string            `json:"ph"`
		Ts   int64             `json:"ts"`
		Pid  int               `json:"pid"`
		Tid  uint64            `json:"tid"`
		Args map[string]string `json:"args,omitempty"`
	}

	phase := "i"
	switch ev.Kind {
	case KindSpanBegin:
		phase = "B"
	case KindSpanEnd:
		phase = "E"
	case KindHeartbeat:
		phase = "i"
	}

	args := ev.Extra
	if ev.Detail != "" {
		if args == nil {
			args = make(map[string]string, 1)
		}
		args["detail"] = ev.Detail
	}

	j := chromeEvent{
		Name: ev.Name,
		Cat:  ev.Scope.String(),
		Ph:   phase,
		Ts:   ev.Time.UnixMicro(),
		Pid:  1,
		Tid:  ev.GID,
		Args: args,
	}
	data, _ := json.Marshal(j)
	return data
}

// formatText formats an event as human-readable text.
// Format: [timestamp] [indent]→/← name (detail)
func formatText(ev *Event) []byte {
	var sb strings.Builder

	// Timestamp relative to start (in milliseconds)
	// For simplicity, we use the seq number as a proxy for ordering
	elapsed := float64(ev.Seq) * 0.001 // approximate
	sb.WriteString(fmt.Sprintf("[%7.3fms] ", elapsed))

	// Indentation based on parent ID (simplified - just use 0 or 2 spaces)
	if ev.ParentID > 0 {
		sb.WriteString("  ")
	}

	// Direction arrow
	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("→ ") // →
	case KindSpanEnd:
		sb.WriteString("← ") // ←
	case KindPoint:
		sb.WriteString("• ") // •
	case KindHeartbeat:
		sb.WriteString("♡ ") // ♡
	}

	// Name
	sb.WriteString(ev.Name)

	// Detail (if any)
	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteString(")")
	}

	// Extra fields (compact format)
	if len(ev.Extra) > 0 {
		sb.WriteString(" {")
		first := true
		for k, v := range ev.Extra {
			if !first {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(v)
			first = false
		}
		sb.WriteString("}")
	}

	sb.WriteString("\n")
	return []byte(sb.String())
}
