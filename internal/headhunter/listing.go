package headhunter

// Listing is a vacancy card scraped from a search page.
type Listing struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	SalaryFrom  *int   `json:"salary_from,omitempty"`
	SalaryTo    *int   `json:"salary_to,omitempty"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type Listings struct {
	Items []*Listing
}

func (l *Listings) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}

func (l *Listings) FindByID(id string) *Listing {
	for _, listing := range l.Items {
		if listing.ID == id {
			return listing
		}
	}
	return nil
}

func (l *Listings) IDs() []string {
	ids := make([]string, 0, l.Len())
	for _, listing := range l.Items {
		ids = append(ids, listing.ID)
	}
	return ids
}

// Merge appends listings whose id is not present yet, keeping the first
// occurrence. It returns the number of appended listings.
func (l *Listings) Merge(other *Listings) int {
	if other == nil {
		return 0
	}

	seen := make(map[string]struct{}, l.Len())
	for _, listing := range l.Items {
		seen[listing.ID] = struct{}{}
	}

	added := 0
	for _, listing := range other.Items {
		if _, ok := seen[listing.ID]; ok {
			continue
		}
		seen[listing.ID] = struct{}{}
		l.Items = append(l.Items, listing)
		added++
	}

	return added
}

// Head returns at most n first listings, preserving order.
func (l *Listings) Head(n int) []*Listing {
	if n > l.Len() {
		n = l.Len()
	}
	if n <= 0 {
		return nil
	}
	return l.Items[:n]
}
