package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"canasta/internal/domain/model"
	"canasta/internal/domain/port"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLSource scrapes a supermarket search results page. Listings and their
// fields are located by CSS class names from the source definition.
type HTMLSource struct {
	name      string
	baseURL   string
	searchURL string
	selectors model.SelectorSet
	renderer  Renderer
	now       func() time.Time
	log       *slog.Logger
}

func NewHTMLSource(def model.SourceDefinition, renderer Renderer, log *slog.Logger) port.SourcePort {
	return &HTMLSource{
		name:      def.Name,
		baseURL:   def.BaseURL,
		searchURL: def.SearchURL,
		selectors: def.Selectors,
		renderer:  renderer,
		now:       time.Now,
		log:       log,
	}
}

func (s *HTMLSource) Name() string {
	return s.name
}

type listing struct {
	name  string
	price string
	unit  string
	link  string
}

func (s *HTMLSource) Fetch(ctx context.Context, product string) (model.Quotation, error) {
	target := searchURL(s.searchURL, product)
	body, err := s.renderer.Render(ctx, target)
	if err != nil {
		return model.Quotation{}, err
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return model.Quotation{}, fmt.Errorf("%w: html: %v", ErrParse, err)
	}

	listings := extractListings(doc, s.selectors)
	if len(listings) == 0 {
		return model.Quotation{}, fmt.Errorf("%w: %q on %s", ErrNotFound, product, s.name)
	}

	skipped := 0
	for _, l := range listings {
		price, err := ParsePrice(l.price)
		if err != nil {
			skipped++
			continue
		}
		unit := ParseUnit(l.unit)
		if unit == "" {
			unit = ParseUnit(l.name)
		}
		q, err := model.NewQuotation(s.name, l.name, price, unit, s.now())
		if err != nil {
			skipped++
			continue
		}
		if skipped > 0 {
			s.log.Debug("skipped listings without a usable price", "source", s.name, "product", product, "skipped", skipped)
		}
		return q.WithURL(resolveURL(s.baseURL, l.link)), nil
	}

	return model.Quotation{}, fmt.Errorf("%w: %d listings without a usable price", ErrParse, len(listings))
}

func searchURL(template, product string) string {
	return strings.ReplaceAll(template, "{query}", url.QueryEscape(strings.TrimSpace(product)))
}

func resolveURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil || base == "" {
		return r.String()
	}
	return b.ResolveReference(r).String()
}

func extractListings(doc *html.Node, sel model.SelectorSet) []listing {
	var out []listing
	for _, item := range findByClass(doc, sel.Item) {
		l := listing{
			name:  firstText(item, sel.Name),
			price: firstText(item, sel.Price),
		}
		if sel.Unit != "" {
			l.unit = firstText(item, sel.Unit)
		}
		l.link = firstLink(item, sel.Link)
		if l.name == "" && l.price == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// findByClass returns every element under root carrying class, in document
// order. Nested matches inside a match are not returned.
func findByClass(root *html.Node, class string) []*html.Node {
	class = strings.TrimPrefix(strings.TrimSpace(class), ".")
	if class == "" {
		return nil
	}
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, class) {
			found = append(found, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func firstText(root *html.Node, class string) string {
	matches := findByClass(root, class)
	if len(matches) == 0 {
		return ""
	}
	return collectText(matches[0])
}

func firstLink(root *html.Node, class string) string {
	start := root
	if matches := findByClass(root, class); len(matches) > 0 {
		start = matches[0]
	}
	var href string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			for _, a := range n.Attr {
				if a.Key == "href" {
					href = a.Val
					return true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(start)
	return href
}

func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		case n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
