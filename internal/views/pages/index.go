package pages

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"qcs/internal/views/components"
	"qcs/internal/views/layout"
)

// Navigation lists the API collections, one per record type.
func Navigation(active string) components.SidebarData {
	return components.SidebarData{
		Active: active,
		Features: []components.SidebarLink{
			{Label: "Suppliers", Path: "/api/suppliers", Section: "suppliers"},
			{Label: "Packages", Path: "/api/packages", Section: "packages"},
			{Label: "Products", Path: "/api/products", Section: "products"},
			{Label: "Batches", Path: "/api/batches", Section: "batches"},
			{Label: "Color data", Path: "/api/color-data", Section: "color-data"},
			{Label: "Export color data", Path: "/api/export/color-data?format=xlsx", Section: "export"},
		},
	}
}

// Index renders the landing page.
func Index(snapshot IndexSnapshot) templ.Component {
	var sidebar templ.Component
	if snapshot.Authenticated {
		sidebar = components.Sidebar(Navigation(""))
	}
	return layout.Layout("Quality control", sidebar, indexContent(snapshot))
}

func indexContent(s IndexSnapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<header><h1>Quality control records</h1>`); err != nil {
			return err
		}
		if s.Authenticated {
			if _, err := fmt.Fprintf(w, `<p>Signed in as %s. <a href="/logout">Sign out</a></p>`, templ.EscapeString(s.UserName)); err != nil {
				return err
			}
		} else if _, err := io.WriteString(w, `<p><a href="/login">Sign in</a> to manage records.</p>`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</header><section class="stats">`); err != nil {
			return err
		}

		cards := []struct {
			label string
			count int64
		}{
			{"Suppliers", s.Counts.Suppliers},
			{"Packages", s.Counts.Packages},
			{"Products", s.Counts.Products},
			{"Batches", s.Counts.Batches},
			{"Color data", s.Counts.ColorData},
		}
		for _, c := range cards {
			if err := components.StatCard(c.label, strconv.FormatInt(c.count, 10), "records").Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</section><section><h2>Recent batches</h2>`); err != nil {
			return err
		}
		if err := components.ActivityTable(s.Activity()).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}
