package calendar

import (
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"

	"fxmonitor/internal/match"
	"fxmonitor/internal/models"
	"fxmonitor/internal/parse"
)

// ParseCalendar walks the calendar table and lifts every high-impact event
// row into a ScrapedRecord. Date rows carry forward to the event rows below
// them; rows with no parseable time fall back to midnight. now anchors the
// year inference for the source's year-less date strings.
func ParseCalendar(r io.Reader, now time.Time) ([]match.ScrapedRecord, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, &ParseError{Msg: "invalid html", Snippet: err.Error()}
	}

	table := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "table" && hasClass(n, "calendar__table")
	})
	if table == nil {
		return nil, &ParseError{Msg: "calendar table not found"}
	}

	var records []match.ScrapedRecord
	var currentDate time.Time
	haveDate := false

	for _, row := range findNodes(table, isElement("tr")) {
		if dateCell := findNode(row, cellWithClass("calendar__date")); dateCell != nil {
			if txt := nodeText(dateCell); txt != "" {
				if d, ok := parseSourceDate(txt, now); ok {
					currentDate = d
					haveDate = true
				}
			}
		}

		impact := impactLevel(row)
		if impact != models.ImpactHigh {
			continue
		}
		if !haveDate {
			continue
		}

		currency := nodeText(findNode(row, cellWithClass("calendar__currency")))
		eventName := nodeText(findNode(row, cellWithClass("calendar__event")))
		if currency == "" || eventName == "" {
			continue
		}

		scheduled := currentDate
		if t, ok := parseSourceTime(nodeText(findNode(row, cellWithClass("calendar__time")))); ok {
			scheduled = time.Date(currentDate.Year(), currentDate.Month(), currentDate.Day(),
				t.Hour(), t.Minute(), 0, 0, time.UTC)
		}

		prev, _ := parse.ParseValue(nodeText(findNode(row, cellWithClass("calendar__previous"))))
		forecast, _ := parse.ParseValue(nodeText(findNode(row, cellWithClass("calendar__forecast"))))

		records = append(records, match.ScrapedRecord{
			Currency:      currency,
			EventName:     eventName,
			ScheduledTime: scheduled,
			ImpactLevel:   impact,
			PreviousValue: prev,
			ForecastValue: forecast,
			ActualRaw:     nodeText(findNode(row, cellWithClass("calendar__actual"))),
		})
	}

	return records, nil
}

// parseSourceDate handles the source's "Mon Jun 22" format. The weekday
// token is dropped before parsing so the year inference below cannot trip
// Go's weekday consistency check. A date landing more than ~6 months ahead
// of now is assumed to belong to last year.
func parseSourceDate(s string, now time.Time) (time.Time, bool) {
	fields := strings.Fields(s)
	if len(fields) == 3 {
		fields = fields[1:]
	}
	if len(fields) != 2 {
		return time.Time{}, false
	}
	d, err := time.Parse("Jan 2 2006", fields[0]+" "+fields[1]+" "+now.Format("2006"))
	if err != nil {
		return time.Time{}, false
	}
	d = d.UTC()
	if d.Sub(now) > 180*24*time.Hour {
		d = d.AddDate(-1, 0, 0)
	}
	return d, true
}

// parseSourceTime handles "8:30am" style times; "All Day", "Tentative" and
// empty cells are not times.
func parseSourceTime(s string) (time.Time, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all day" || s == "tentative" {
		return time.Time{}, false
	}
	t, err := time.Parse("3:04pm", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func impactLevel(row *html.Node) string {
	cell := findNode(row, cellWithClass("calendar__impact"))
	if cell == nil {
		return ""
	}
	span := findNode(cell, isElement("span"))
	if span == nil {
		return ""
	}
	for _, cls := range strings.Fields(attr(span, "class")) {
		switch {
		case strings.Contains(cls, "high"):
			return models.ImpactHigh
		case strings.Contains(cls, "medium"):
			return models.ImpactMedium
		case strings.Contains(cls, "low"):
			return models.ImpactLow
		}
	}
	return ""
}

// --- html walking helpers ---------------------------------------------------

func isElement(name string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == name
	}
}

func cellWithClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "td" && hasClass(n, class)
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, cls := range strings.Fields(attr(n, "class")) {
		if cls == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findNode(root *html.Node, pred func(*html.Node) bool) *html.Node {
	if root == nil {
		return nil
	}
	if pred(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, pred); found != nil {
			return found
		}
	}
	return nil
}

func findNodes(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}
		if pred(n) {
			out = append(out, n)
			// Do not descend into matched nodes; rows do not nest.
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
