package ui

import (
	"strings"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type navItem struct {
	Label string
	Href  string
	Key   string
}

var navItems = []navItem{
	{Label: "Overview", Href: "/ui", Key: "home"},
	{Label: "Browse", Href: "/ui/browse", Key: "browse"},
	{Label: "Access", Href: "/ui/access", Key: "access"},
	{Label: "Role grants", Href: "/ui/roles", Key: "roles"},
}

const stylesheet = `
body { font-family: system-ui, sans-serif; margin: 0; color: #1f2328; }
.app-shell { display: flex; min-height: 100vh; }
.app-sidebar { width: 200px; padding: 16px; border-right: 1px solid #d1d9e0; }
.app-nav a { display: block; padding: 6px 8px; border-radius: 6px; color: inherit; text-decoration: none; }
.app-nav a.active { background: #eaeef2; font-weight: 600; }
.app-main { flex: 1; padding: 24px; max-width: 960px; }
.card { border: 1px solid #d1d9e0; border-radius: 6px; padding: 16px; margin-bottom: 16px; }
.muted { color: #59636e; font-size: 13px; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #eaeef2; }
.tree ul { list-style: none; padding-left: 20px; }
.tree form { display: inline; }
.tree button { border: none; background: none; cursor: pointer; font: inherit; }
.error { color: #d1242f; }
button.danger { color: #d1242f; }
`

func appPage(title, active string, body ...Node) Node {
	nav := make([]Node, 0, len(navItems))
	for _, item := range navItems {
		className := ""
		if item.Key == active {
			className = "active"
		}
		nav = append(nav, A(Href(item.Href), Class(className), Text(item.Label)))
	}

	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | Catalog Console")),
			Link(Rel("icon"), Href("data:,")),
			StyleEl(Raw(stylesheet)),
		),
		Body(
			Main(Class("app-shell"),
				Aside(
					Class("app-sidebar"),
					Div(
						Class("brand"),
						Strong(Text("Catalog Console")),
						P(Class("muted"), Text("Grants and namespaces")),
					),
					Nav(Class("app-nav"), Group(nav)),
				),
				Section(
					Class("app-main"),
					H1(Text(title)),
					Group(body),
				),
			),
		),
	)
}

func errorPage(title, message string) Node {
	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			TitleEl(Text(title+" | Catalog Console")),
			StyleEl(Raw(stylesheet)),
		),
		Body(
			Main(
				Class("app-main"),
				H1(Text(title)),
				P(Class("error"), Text(message)),
				P(A(Href("/ui"), Text("Back to overview"))),
			),
		),
	)
}

func cardClass(extra ...string) string {
	parts := append([]string{"card"}, extra...)
	return strings.Join(parts, " ")
}

func mutedClass() string {
	return "muted"
}

func dashIfEmpty(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
