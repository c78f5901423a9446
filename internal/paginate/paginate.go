// Package paginate renders long listings one page at a time.
package paginate

import (
	"fmt"
	"strings"
)

// DefaultPerPage is the page size used for API listings.
const DefaultPerPage = 20

// Pages is a titled listing split into fixed-size pages.
type Pages struct {
	Title       string
	Description string
	Entries     []string
	PerPage     int
}

func (p *Pages) perPage() int {
	if p.PerPage <= 0 {
		return DefaultPerPage
	}
	return p.PerPage
}

// Count is the number of pages; an empty listing still has one page.
func (p *Pages) Count() int {
	n := (len(p.Entries) + p.perPage() - 1) / p.perPage()
	if n == 0 {
		return 1
	}
	return n
}

// Clamp maps page into [1, Count()].
func (p *Pages) Clamp(page int) int {
	if page < 1 {
		return 1
	}
	if c := p.Count(); page > c {
		return c
	}
	return page
}

// Render formats one page. Entries are numbered across the whole listing.
func (p *Pages) Render(page int) string {
	page = p.Clamp(page)

	var b strings.Builder
	if p.Title != "" {
		fmt.Fprintf(&b, "**%s**\n", p.Title)
	}
	if p.Description != "" {
		b.WriteString(p.Description)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(p.Entries) == 0 {
		b.WriteString("No entries.")
		return b.String()
	}

	start := (page - 1) * p.perPage()
	end := start + p.perPage()
	if end > len(p.Entries) {
		end = len(p.Entries)
	}
	for i := start; i < end; i++ {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Entries[i])
	}
	fmt.Fprintf(&b, "\nPage %d/%d (%d entries)", page, p.Count(), len(p.Entries))
	return b.String()
}
