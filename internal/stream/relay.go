// Package stream re-frames a model's server-sent event stream into plain
// text for the caller.
//
// Each frame is a group of lines terminated by a blank line. Only "data:"
// lines carry content; several of them in one frame are joined with "\n".
// A frame whose data is the [DONE] sentinel ends the stream. Every other frame
// is decoded as {"response": "..."} and its text is written through at once.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Sentinel is the data value that marks the end of a token stream.
const Sentinel = "[DONE]"

// maxFrameLine bounds a single event-stream line.
const maxFrameLine = 1 << 20

// TokenEvent is one parsed event-stream frame.
type TokenEvent struct {
	Data string
}

type tokenPayload struct {
	Response string `json:"response"`
}

// ParseError is returned when a frame's data is not a valid token payload.
type ParseError struct {
	Data string
	Err  error
}

func (e *ParseError) Error() string {
	data := e.Data
	if len(data) > 120 {
		data = data[:120] + "..."
	}
	return fmt.Sprintf("malformed token event %q: %v", data, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Relay forwards response text from src to dst in arrival order and returns
// how many events were forwarded. It stops at the sentinel, at the end of
// src, on ctx cancellation or when writing to dst fails, so a gone caller
// stops further reads from src.
//
// When dst has a Flush method it is called after every write.
func Relay(ctx context.Context, src io.Reader, dst io.Writer) (int, error) {
	r := NewReader(src)
	forwarded := 0
	for {
		if err := ctx.Err(); err != nil {
			return forwarded, err
		}

		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return forwarded, nil
		}
		if err != nil {
			return forwarded, err
		}
		if ev.Data == Sentinel {
			return forwarded, nil
		}

		var p tokenPayload
		if err := json.Unmarshal([]byte(ev.Data), &p); err != nil {
			return forwarded, &ParseError{Data: ev.Data, Err: err}
		}
		if p.Response == "" {
			continue
		}
		if _, err := io.WriteString(dst, p.Response); err != nil {
			return forwarded, fmt.Errorf("write token: %w", err)
		}
		if err := flush(dst); err != nil {
			return forwarded, fmt.Errorf("flush token: %w", err)
		}
		forwarded++
	}
}

func flush(w io.Writer) error {
	switch f := w.(type) {
	case interface{ Flush() error }:
		return f.Flush()
	case interface{ Flush() }:
		f.Flush()
	}
	return nil
}

// Reader parses event-stream frames one at a time.
type Reader struct {
	sc *bufio.Scanner
}

func NewReader(src io.Reader) *Reader {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 4096), maxFrameLine)
	return &Reader{sc: sc}
}

// Next returns the next frame that carries data. Frames without data lines
// (comments, keep-alives, bare event names) are skipped. It returns io.EOF
// when the stream ends.
func (r *Reader) Next() (TokenEvent, error) {
	var data []string
	hasData := false
	for r.sc.Scan() {
		line := strings.TrimSuffix(r.sc.Text(), "\r")
		if line == "" {
			if hasData {
				return TokenEvent{Data: strings.Join(data, "\n")}, nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		if field == "data" {
			data = append(data, value)
			hasData = true
		}
	}
	if err := r.sc.Err(); err != nil {
		return TokenEvent{}, fmt.Errorf("read event stream: %w", err)
	}
	// A final frame may end without its blank line.
	if hasData {
		return TokenEvent{Data: strings.Join(data, "\n")}, nil
	}
	return TokenEvent{}, io.EOF
}
