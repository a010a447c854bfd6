package layout

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func TestLayoutRendersProvidedContent(t *testing.T) {
	sidebar := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := w.Write([]byte("<aside>sidebar</aside>"))
		return err
	})
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := w.Write([]byte("<main>content</main>"))
		return err
	})

	var buf bytes.Buffer
	if err := Layout("Quality & Control", sidebar, content).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render layout: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<title>Quality &amp; Control</title>") {
		t.Fatalf("expected escaped document title to be rendered: %s", out)
	}
	if !strings.Contains(out, "sidebar") || !strings.Contains(out, "content") {
		t.Fatalf("expected sidebar and content sections in output: %s", out)
	}
}

func TestLayoutWithoutSidebar(t *testing.T) {
	var buf bytes.Buffer
	if err := Layout("Login", nil, nil).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render layout: %v", err)
	}
	if strings.Contains(buf.String(), "shell--sidebar") {
		t.Fatalf("expected plain shell without sidebar: %s", buf.String())
	}
}

func TestBodyWrapperClassReflectsSidebarState(t *testing.T) {
	if bodyWrapperClass(true) == bodyWrapperClass(false) {
		t.Fatal("expected different body wrapper class depending on sidebar state")
	}
	if mainClass(true) == mainClass(false) {
		t.Fatal("expected different main class depending on sidebar state")
	}
}
