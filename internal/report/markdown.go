package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"catalog-scraper/internal/scraper"
)

// MarkdownWriter renders a human-readable crawl summary: one table per
// listing page and a collapsible block per item.
type MarkdownWriter struct {
	output io.Writer
}

func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

func (w *MarkdownWriter) Write(r *Report) error {
	md := markdown.NewMarkdown(w.output)

	first := max(r.FirstPage, 1)

	w.writeHeader(md, r)
	for i, page := range r.Result.Pages {
		w.writePage(md, first+i, page)
	}

	md.HorizontalRule()
	md.PlainTextf("*Generated %s*", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	return md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, r *Report) {
	md.H1(fmt.Sprintf("%s crawl", r.Source))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", r.StartURL},
			{"Requested pages", strconv.Itoa(r.Pages)},
			{"First page", strconv.Itoa(max(r.FirstPage, 1))},
			{"Visited pages", strconv.Itoa(len(r.Result.Pages))},
			{"Items", strconv.Itoa(r.Result.ItemCount())},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writePage(md *markdown.Markdown, n int, page *scraper.PageResult) {
	md.H2(fmt.Sprintf("Page %d", n))
	md.PlainText("")

	if len(page.Items) == 0 {
		md.PlainText("No items on this page.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(page.Items))
	for i, item := range page.Items {
		rows[i] = []string{
			cell(item.Title),
			cell(item.Subtitle),
			formatPrice(item.Price),
			cell(item.Type),
			item.URL,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Title", "Code", "Price", "Type", "URL"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, item := range page.Items {
		md.Details(item.Title, itemDetails(item))
	}
	md.PlainText("")
}

func itemDetails(item *scraper.ScrapedItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "![%s](%s)\n\n", item.Title, item.ProfileImage)
	b.WriteString(item.Description)
	b.WriteString("\n")

	if len(item.Specifications) == 0 {
		return b.String()
	}

	labels := make([]string, 0, len(item.Specifications))
	for label := range item.Specifications {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	b.WriteString("\n")
	for _, label := range labels {
		fmt.Fprintf(&b, "- **%s**: %s\n", label, strings.ReplaceAll(item.Specifications[label], "\n", ", "))
	}
	return b.String()
}

// formatPrice shows the out-of-stock sentinel as a dash.
func formatPrice(price float64) string {
	if price == 0 {
		return "-"
	}
	return strconv.FormatFloat(price, 'f', -1, 64)
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}
