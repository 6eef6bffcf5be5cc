// Package scoring rates how well a scraped listing fits a profile.
package scoring

import (
	"strings"

	"github.com/spigell/job-helper/internal/headhunter"
	"github.com/spigell/job-helper/internal/profile"
)

const (
	salaryWeight     = 30
	roleWeight       = 25
	technologyWeight = 15
	technologyCap    = 45
	maxScore         = 100
)

// Score returns a relevance score in [0, 100]. Blank preferences never match.
func Score(listing *headhunter.Listing, p *profile.Profile) int {
	if listing == nil || p == nil {
		return 0
	}

	score := 0

	if listing.SalaryFrom != nil && *listing.SalaryFrom != 0 && *listing.SalaryFrom >= p.SalaryMin {
		score += salaryWeight
	}

	title := strings.ToLower(listing.Title)
	for _, role := range p.Roles {
		role = strings.ToLower(strings.TrimSpace(role))
		if role != "" && strings.Contains(title, role) {
			score += roleWeight
			break
		}
	}

	text := strings.ToLower(listing.Description + listing.Title)
	seen := make(map[string]struct{}, len(p.Technologies))
	techScore := 0
	for _, tech := range p.Technologies {
		tech = strings.ToLower(strings.TrimSpace(tech))
		if tech == "" {
			continue
		}
		if _, ok := seen[tech]; ok {
			continue
		}
		seen[tech] = struct{}{}

		if strings.Contains(text, tech) {
			techScore += technologyWeight
		}
	}
	score += min(techScore, technologyCap)

	return min(score, maxScore)
}
