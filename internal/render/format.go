package render

import (
	"html/template"
	"math"
	"regexp"
	"strings"
	"time"
)

// FormatDate renders a received date relative to now: the time of day
// for roughly a day ago, the weekday within a week, otherwise month and
// day. A nil date renders as the empty string.
func FormatDate(t *time.Time, now time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}

	d := t.In(now.Location())
	diff := now.Sub(d)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(diff.Hours() / 24))

	switch {
	case days == 1:
		return d.Format("15:04")
	case days <= 7:
		return d.Format("Mon")
	default:
		return d.Format("Jan 2")
	}
}

// Highlight escapes text and wraps every case-insensitive occurrence of
// term in <mark>.
func Highlight(text, term string) template.HTML {
	if text == "" || term == "" {
		return template.HTML(template.HTMLEscapeString(text))
	}

	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))

	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		b.WriteString(template.HTMLEscapeString(text[last:m[0]]))
		b.WriteString("<mark>")
		b.WriteString(template.HTMLEscapeString(text[m[0]:m[1]]))
		b.WriteString("</mark>")
		last = m[1]
	}
	b.WriteString(template.HTMLEscapeString(text[last:]))

	return template.HTML(b.String())
}

// Initial returns the upper-cased first letter of name, or "?" when empty.
func Initial(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}
