package render

import (
	"strings"
	"testing"
)

func TestToHTML_BulletList(t *testing.T) {
	out, err := ToHTML("A short summary.\n\n- first point\n- second point\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"<p>A short summary.</p>", "<ul>", "<li>first point</li>", "<li>second point</li>"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %q", want, out)
		}
	}
}

func TestToHTML_DropsRawHTML(t *testing.T) {
	out, err := ToHTML("hello <script>alert(1)</script>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("raw html should not be rendered: %q", out)
	}
}

func TestToHTML_Empty(t *testing.T) {
	out, err := ToHTML("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}
