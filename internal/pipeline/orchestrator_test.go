package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/hnsum/internal/fetch"
	"github.com/dgallion1/hnsum/internal/parser"
)

type stubFetcher struct {
	body string
	err  error
	urls []string
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	return f.body, f.err
}

func pageWithComments(n int) string {
	var sb strings.Builder
	sb.WriteString("<html><head><title>Ask HN: Testing?</title></head><body>")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, `<div class="commtext c00">comment <b>%d</b></div>`, i)
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

const testURL = "https://news.ycombinator.com/item?id=1"

func TestOrchestratorComments_ReturnsAllSanitized(t *testing.T) {
	f := &stubFetcher{body: pageWithComments(7)}
	gen := &stubGenerator{}
	o := NewOrchestrator(f, newTestGateway(gen), 5, testLog)

	got, err := o.Comments(context.Background(), testURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("expected all 7 comments, got %d", len(got))
	}
	for i, c := range got {
		want := fmt.Sprintf("comment %d", i+1)
		if c != want {
			t.Errorf("comment[%d]: expected %q, got %q", i, want, c)
		}
		if strings.ContainsAny(c, "<>") {
			t.Errorf("comment[%d] still has markup: %q", i, c)
		}
	}
	if gen.calls != 0 {
		t.Errorf("comment listing must not call the model, got %d calls", gen.calls)
	}
	if len(f.urls) != 1 || f.urls[0] != testURL {
		t.Errorf("expected one fetch of %s, got %v", testURL, f.urls)
	}
}

func TestOrchestratorSummarize_UsesTopFiveInOrder(t *testing.T) {
	gen := &stubGenerator{}
	o := NewOrchestrator(&stubFetcher{body: pageWithComments(7)}, newTestGateway(gen), 5, testLog)

	got, err := o.Summarize(context.Background(), testURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "summary" {
		t.Errorf("expected summary, got %q", got)
	}
	prompt := gen.prompts[0]
	if !strings.Contains(prompt, "Title: Ask HN: Testing?") {
		t.Errorf("prompt missing heading: %q", prompt)
	}
	if !strings.Contains(prompt, "comment 1\n\ncomment 2\n\ncomment 3\n\ncomment 4\n\ncomment 5") {
		t.Errorf("prompt missing ordered top comments: %q", prompt)
	}
	if strings.Contains(prompt, "comment 6") {
		t.Errorf("prompt must hold at most five comments")
	}
}

func TestOrchestrator_ContentNotFoundSkipsInference(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing string
	}{
		{name: "no title", body: `<div class="commtext c00">Hello</div>`, missing: parser.MissingHeading},
		{name: "no comments", body: `<title>Test</title>`, missing: parser.MissingComments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{}
			o := NewOrchestrator(&stubFetcher{body: tt.body}, newTestGateway(gen), 5, testLog)

			_, err := o.Summarize(context.Background(), testURL)
			var nf *parser.ContentNotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("expected ContentNotFoundError, got %v", err)
			}
			if nf.Missing != tt.missing {
				t.Errorf("expected missing %q, got %q", tt.missing, nf.Missing)
			}
			if gen.calls != 0 {
				t.Errorf("expected no inference call, got %d", gen.calls)
			}
		})
	}
}

func TestOrchestrator_FetchErrorIsNotRetried(t *testing.T) {
	f := &stubFetcher{err: &fetch.Error{URL: testURL, StatusCode: 503}}
	gen := &stubGenerator{}
	o := NewOrchestrator(f, newTestGateway(gen), 5, testLog)

	_, err := o.Summarize(context.Background(), testURL)
	var fe *fetch.Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected fetch.Error, got %v", err)
	}
	if len(f.urls) != 1 {
		t.Errorf("expected a single fetch, got %d", len(f.urls))
	}
	if gen.calls != 0 {
		t.Errorf("expected no inference call, got %d", gen.calls)
	}
}

func TestOrchestratorStreamSummary_RelaysTokens(t *testing.T) {
	o := NewOrchestrator(&stubFetcher{body: pageWithComments(2)}, newTestGateway(&stubGenerator{}), 5, testLog)

	var out bytes.Buffer
	if err := o.StreamSummary(context.Background(), testURL, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "A" {
		t.Errorf("expected relayed text %q, got %q", "A", out.String())
	}
}

func TestOrchestratorImage_NeedsOnlyHeading(t *testing.T) {
	gen := &stubGenerator{}
	o := NewOrchestrator(&stubFetcher{body: "<title>Just <i>a</i> title</title>"}, newTestGateway(gen), 5, testLog)

	img, err := o.Image(context.Background(), testURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(img) != "png" {
		t.Errorf("unexpected image bytes %q", img)
	}
	if !strings.Contains(gen.prompts[0], `"Just a title"`) {
		t.Errorf("image prompt should carry the sanitized heading: %q", gen.prompts[0])
	}
}
