package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"animal-tracker/internal/platform/httpclient"

	"golang.org/x/net/html"
)

var ErrNoTable = errors.New("no table found in page")

// TableScraper implementa scrape.RowSource: baja una página del registro
// veterinario y convierte la primera <table> en filas header -> celda.
// Los errores suben al caller; reintentar es decisión de quien importa.
type TableScraper struct {
	client *httpclient.Client
}

func NewTableScraper(timeout time.Duration) *TableScraper {
	return &TableScraper{client: httpclient.New(timeout)}
}

// NewTableScraperWithClient permite inyectar el client (tests).
func NewTableScraperWithClient(client *httpclient.Client) *TableScraper {
	return &TableScraper{client: client}
}

func (s *TableScraper) Fetch(ctx context.Context, url string) ([]map[string]string, error) {
	body, err := s.client.GetRaw(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	return ParseTable(body)
}

// ParseTable extrae la primera tabla del HTML. Los th son headers; cada tr
// siguiente es una fila. Celdas faltantes quedan como string vacío en vez de
// tirar la fila.
func ParseTable(page []byte) ([]map[string]string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := findFirst(doc, "table")
	if table == nil {
		return nil, ErrNoTable
	}

	var headers []string
	for _, th := range findAll(table, "th") {
		headers = append(headers, strings.TrimSpace(text(th)))
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: table has no th headers", ErrNoTable)
	}

	var rows []map[string]string
	for _, tr := range findAll(table, "tr") {
		cells := findAll(tr, "td")
		if len(cells) == 0 {
			continue // fila de headers u otra decorativa
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				row[h] = strings.TrimSpace(text(cells[i]))
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
			return // no descender dentro de un match (tablas anidadas)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return out
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
