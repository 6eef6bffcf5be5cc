package search

import (
	"fmt"
	"html"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/spigell/job-helper/internal/headhunter"
)

const (
	salaryNegotiable = "negotiable"
	NothingFound     = "😞 No vacancies found.\n\nTry to:\n• lower the salary\n• add more cities\n• add more roles"
)

// RenderDigest formats the first DigestSize listings as Telegram HTML.
func RenderDigest(r *Result) string {
	if r == nil || r.Found() == 0 {
		return NothingFound
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 Found <b>%d</b> vacancies!\n\n", r.Found())

	for i, l := range r.Listings.Head(DigestSize) {
		fmt.Fprintf(&b, "%d. <b>%s</b>\n", i+1, html.EscapeString(l.Title))
		fmt.Fprintf(&b, "   💼 %s\n", html.EscapeString(l.Company))
		fmt.Fprintf(&b, "   💰 %s\n", SalaryText(l))
		fmt.Fprintf(&b, "   <a href=\"%s\">Open</a>\n\n", html.EscapeString(l.URL))
	}

	return strings.TrimRight(b.String(), "\n")
}

// SalaryText shows the band only when both bounds are known.
func SalaryText(l *headhunter.Listing) string {
	if l.SalaryFrom == nil || l.SalaryTo == nil || *l.SalaryFrom == 0 || *l.SalaryTo == 0 {
		return salaryNegotiable
	}
	return fmt.Sprintf("%s–%s ₽", humanize.Comma(int64(*l.SalaryFrom)), humanize.Comma(int64(*l.SalaryTo)))
}
