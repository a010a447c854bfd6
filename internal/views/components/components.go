// Package components holds small reusable HTML fragments.
package components

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// SidebarLink is one navigation entry.
type SidebarLink struct {
	Label   string
	Path    string
	Section string
}

// SidebarData drives the navigation sidebar.
type SidebarData struct {
	Active   string
	Features []SidebarLink
}

// ActivityEntry is one row of the recent batches table.
type ActivityEntry struct {
	Name      string
	Reference string
	Quantity  string
	UpdatedAt string
	Status    string
}

func linkState(section, active string) string {
	if section == active {
		return "active"
	}
	return "inactive"
}

// StatCard renders a labelled figure.
func StatCard(label, value, caption string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="stat-card"><p class="stat-label">%s</p><p class="stat-value">%s</p><p class="stat-caption">%s</p></div>`,
			templ.EscapeString(label), templ.EscapeString(value), templ.EscapeString(caption),
		)
		return err
	})
}

// ActivityTable lists recent batches.
func ActivityTable(entries []ActivityEntry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<table class="activity"><thead><tr><th>Batch</th><th>Product</th><th>Size</th><th>Expires</th><th>Attachments</th></tr></thead><tbody>`); err != nil {
			return err
		}
		if len(entries) == 0 {
			if _, err := io.WriteString(w, `<tr><td colspan="5">No batches recorded yet.</td></tr>`); err != nil {
				return err
			}
		}
		for _, e := range entries {
			if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				templ.EscapeString(e.Name),
				templ.EscapeString(e.Reference),
				templ.EscapeString(e.Quantity),
				templ.EscapeString(e.UpdatedAt),
				templ.EscapeString(e.Status),
			); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table>`)
		return err
	})
}

// Sidebar renders the navigation links, marking the active one.
func Sidebar(data SidebarData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<nav class="sidebar"><ul>`); err != nil {
			return err
		}
		for _, link := range data.Features {
			if _, err := fmt.Fprintf(w, `<li><a href="%s" data-state="%s">%s</a></li>`,
				templ.EscapeString(link.Path),
				linkState(link.Section, data.Active),
				templ.EscapeString(link.Label),
			); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul></nav>`)
		return err
	})
}

// Flash renders a notice, or nothing when message is empty.
func Flash(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if message == "" {
			return nil
		}
		_, err := fmt.Fprintf(w, `<p class="flash" role="alert">%s</p>`, templ.EscapeString(message))
		return err
	})
}
