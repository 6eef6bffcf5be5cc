package headhunter

import (
	"bytes"
	"net/url"
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// CardParser turns a search result page into listings.
type CardParser interface {
	Parse(page []byte) (*Listings, error)
}

// Selectors describes the markup of a search result card.
type Selectors struct {
	Card        string
	Title       string
	Company     string
	Salary      string
	Link        string
	Description string
}

// DefaultSelectors matches the hh.ru markup. The hashed class suffixes change
// with site releases.
var DefaultSelectors = Selectors{
	Card:        "div.vacancy-card--z_UXteG7nY9cNcHF3xXEKw",
	Title:       "h3.bloko-header-section-3",
	Company:     "div.vacancy-company-name",
	Salary:      "span.fake-magritte-primary-text--Hdw8FvkO0MdeN7jHWP_x5w",
	Link:        "a.vacancy-card__title-link",
	Description: "div.vacancy-card__snippet",
}

const (
	maxCardsPerPage      = 10
	maxDescriptionLength = 500
	unknownCompany       = "Unknown"
	salaryRangeSeparator = "–"
)

// MarkupParser extracts cards with CSS selectors.
type MarkupParser struct {
	origin    *url.URL
	selectors Selectors
	maxCards  int
}

func NewMarkupParser(siteURL string) *MarkupParser {
	origin, err := url.Parse(siteURL)
	if err != nil {
		origin = nil
	}

	return &MarkupParser{
		origin:    origin,
		selectors: DefaultSelectors,
		maxCards:  maxCardsPerPage,
	}
}

func (p *MarkupParser) Parse(page []byte) (*Listings, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	listings := &Listings{}
	doc.Find(p.selectors.Card).EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= p.maxCards {
			return false
		}
		if listing := p.parseCard(card); listing != nil {
			listings.Merge(&Listings{Items: []*Listing{listing}})
		}
		return true
	})

	return listings, nil
}

func (p *MarkupParser) parseCard(card *goquery.Selection) *Listing {
	titleElem := card.Find(p.selectors.Title).First()
	if titleElem.Length() == 0 {
		return nil
	}
	title := strings.TrimSpace(titleElem.Text())

	href, _ := card.Find(p.selectors.Link).First().Attr("href")
	href = strings.TrimSpace(href)

	if title == "" || href == "" {
		return nil
	}

	company := unknownCompany
	if elem := card.Find(p.selectors.Company).First(); elem.Length() > 0 {
		company = strings.TrimSpace(elem.Text())
	}

	link := p.absolute(href)
	listing := &Listing{
		ID:          listingID(link),
		Title:       title,
		Company:     company,
		Description: truncate(strings.TrimSpace(card.Find(p.selectors.Description).First().Text()), maxDescriptionLength),
		URL:         link,
	}

	listing.SalaryFrom, listing.SalaryTo = parseSalary(card.Find(p.selectors.Salary).First().Text())

	return listing
}

func (p *MarkupParser) absolute(href string) string {
	if strings.HasPrefix(href, "http") || p.origin == nil {
		return href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return strings.TrimRight(p.origin.String(), "/") + href
	}

	return p.origin.ResolveReference(ref).String()
}

// listingID is the last path segment of the listing URL.
func listingID(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		parts := strings.Split(link, "/")
		return parts[len(parts)-1]
	}

	return path.Base(strings.TrimRight(u.Path, "/"))
}

// parseSalary reads "100 000 – 150 000 ₽". Anything else, or a range that does
// not parse, leaves both bounds unset.
func parseSalary(text string) (*int, *int) {
	if !strings.Contains(text, salaryRangeSeparator) {
		return nil, nil
	}

	parts := strings.Split(stripSalary(text), salaryRangeSeparator)
	if len(parts) < 2 {
		return nil, nil
	}

	from, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, nil
	}
	to, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, nil
	}

	return &from, &to
}

func stripSalary(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '₽' || r == ',' {
			return -1
		}
		return r
	}, text)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
