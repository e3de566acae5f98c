package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frames(fs ...string) string {
	return strings.Join(fs, "\n\n") + "\n\n"
}

func TestRelay_ForwardsInOrderAndDropsSentinel(t *testing.T) {
	src := frames(
		`data: {"response":"A"}`,
		`data: {"response":"B"}`,
		`data: [DONE]`,
	)
	var out bytes.Buffer

	n, err := Relay(context.Background(), strings.NewReader(src), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "AB", out.String())
}

func TestRelay_NothingAfterSentinel(t *testing.T) {
	src := frames(
		`data: {"response":"A"}`,
		`data: [DONE]`,
		`data: {"response":"late"}`,
	)
	var out bytes.Buffer

	_, err := Relay(context.Background(), strings.NewReader(src), &out)
	require.NoError(t, err)
	assert.Equal(t, "A", out.String())
}

func TestRelay_FramesSplitAcrossReads(t *testing.T) {
	src := frames(
		`data: {"response":"Hel"}`,
		`data: {"response":"lo"}`,
		`data: [DONE]`,
	)
	var out bytes.Buffer

	_, err := Relay(context.Background(), iotest.OneByteReader(strings.NewReader(src)), &out)
	require.NoError(t, err)
	assert.Equal(t, "Hello", out.String())
}

func TestRelay_IgnoresCommentsAndOtherFields(t *testing.T) {
	src := ": keep-alive\n\n" +
		"event: token\nid: 1\ndata: {\"response\":\"x\",\"p\":\"abc\"}\n\n" +
		"retry: 1000\n\n" +
		"data: [DONE]\n\n"
	var out bytes.Buffer

	n, err := Relay(context.Background(), strings.NewReader(src), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "x", out.String())
}

func TestRelay_CRLFFraming(t *testing.T) {
	src := "data: {\"response\":\"A\"}\r\n\r\ndata: [DONE]\r\n\r\n"
	var out bytes.Buffer

	_, err := Relay(context.Background(), strings.NewReader(src), &out)
	require.NoError(t, err)
	assert.Equal(t, "A", out.String())
}

func TestRelay_EndWithoutSentinel(t *testing.T) {
	src := `data: {"response":"A"}` + "\n\n" + `data: {"response":"B"}`
	var out bytes.Buffer

	n, err := Relay(context.Background(), strings.NewReader(src), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "AB", out.String())
}

func TestRelay_MalformedPayload(t *testing.T) {
	src := frames(`data: {"response":"A"}`, `data: {not json`, `data: [DONE]`)
	var out bytes.Buffer

	_, err := Relay(context.Background(), strings.NewReader(src), &out)
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "expected ParseError, got %v", err)
	assert.Equal(t, "{not json", pe.Data)
	assert.Equal(t, "A", out.String())
}

type failingWriter struct{ writes int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, io.ErrClosedPipe
}

type countingReader struct {
	r     io.Reader
	reads int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	return c.r.Read(p)
}

func TestRelay_StopsPullingWhenDestinationGone(t *testing.T) {
	src := &countingReader{r: iotest.OneByteReader(strings.NewReader(frames(
		`data: {"response":"A"}`,
		`data: {"response":"B"}`,
		`data: {"response":"C"}`,
		`data: [DONE]`,
	)))}
	dst := &failingWriter{}

	_, err := Relay(context.Background(), src, dst)
	require.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Equal(t, 1, dst.writes)

	first := len(`data: {"response":"A"}`) + 2
	assert.LessOrEqual(t, src.reads, first+1, "relay kept reading after the destination failed")
}

func TestRelay_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer

	n, err := Relay(ctx, strings.NewReader(frames(`data: {"response":"A"}`)), &out)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
	assert.Empty(t, out.String())
}

type flushRecorder struct {
	bytes.Buffer
	flushes int
}

func (f *flushRecorder) Flush() error {
	f.flushes++
	return nil
}

func TestRelay_FlushesEveryToken(t *testing.T) {
	var out flushRecorder
	_, err := Relay(context.Background(), strings.NewReader(frames(
		`data: {"response":"A"}`,
		`data: {"response":"B"}`,
		`data: [DONE]`,
	)), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, out.flushes)
}

func TestReader_JoinsMultipleDataLines(t *testing.T) {
	r := NewReader(strings.NewReader("data: line1\ndata: line2\n\n"))
	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2", ev.Data)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}
