package event

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Encode writes one event as a Server-Sent Events frame:
//
//	event: <type>
//	data: <json payload>
//	<blank line>
func Encode(w io.Writer, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Type(), err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type(), payload); err != nil {
		return fmt.Errorf("write %s: %w", ev.Type(), err)
	}
	return nil
}

// Decoder reads SSE frames back into typed events. Used by tests and any Go
// consumer of the stream.
type Decoder struct {
	s *bufio.Scanner
}

func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Decoder{s: s}
}

// Next returns the next event, or io.EOF once the stream is exhausted.
func (d *Decoder) Next() (Event, error) {
	var typ, data string
	for d.s.Scan() {
		line := d.s.Text()
		switch {
		case line == "":
			if typ != "" {
				return unmarshal(Type(typ), []byte(data))
			}
			// Stray blank line between frames; keep scanning.
		case strings.HasPrefix(line, "event: "):
			typ = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case strings.HasPrefix(line, ":"):
			// SSE comment, ignored.
		default:
			return nil, fmt.Errorf("malformed sse line: %q", line)
		}
	}
	if err := d.s.Err(); err != nil {
		return nil, err
	}
	if typ != "" {
		return unmarshal(Type(typ), []byte(data))
	}
	return nil, io.EOF
}

func unmarshal(typ Type, data []byte) (Event, error) {
	switch typ {
	case TypeDebateStart:
		var v DebateStart
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return v, nil
	case TypeModelStart:
		var v ModelStart
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return v, nil
	case TypeModelChunk:
		var v ModelChunk
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return v, nil
	case TypeModelComplete:
		var v ModelComplete
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return v, nil
	case TypeAgreementDetected:
		var v AgreementDetected
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return v, nil
	case TypeSynthesisStart:
		var v SynthesisStart
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return v, nil
	case TypeSynthesisComplete:
		var v SynthesisComplete
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return v, nil
	case TypeCostUpdate:
		var v CostUpdate
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return v, nil
	case TypeDebateComplete:
		var v DebateComplete
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return v, nil
	case TypeDebateError:
		var v DebateError
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", typ)
	}
}
