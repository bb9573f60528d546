package runs

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/JaimeStill/colorbook/pkg/pagination"
	"github.com/JaimeStill/colorbook/pkg/repository"
)

const columns = `id, theme, owner, tier, page_count, completed_pages, status, message, document_key, started_at, finished_at`

// Filters contains optional filtering criteria for run queries.
// Nil fields are ignored. Status and Tier use exact matching; Owner uses
// case-insensitive contains matching.
type Filters struct {
	Status *string `json:"status,omitempty"`
	Tier   *string `json:"tier,omitempty"`
	Owner  *string `json:"owner,omitempty"`
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if t := values.Get("tier"); t != "" {
		f.Tier = &t
	}
	if o := values.Get("owner"); o != "" {
		f.Owner = &o
	}

	return f
}

// Where builds the WHERE clause and positional arguments for a page
// request and filters. The search term matches theme or owner.
func Where(page pagination.PageRequest, f Filters) (string, []any) {
	var (
		conds []string
		args  []any
	)

	add := func(format string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if pattern := page.SearchPattern(); pattern != "" {
		args = append(args, pattern)
		conds = append(conds, fmt.Sprintf("(theme ILIKE $%[1]d OR owner ILIKE $%[1]d)", len(args)))
	}
	if f.Status != nil {
		add("status = $%d", *f.Status)
	}
	if f.Tier != nil {
		add("tier = $%d", *f.Tier)
	}
	if f.Owner != nil {
		owner := pagination.PageRequest{Search: f.Owner}
		add("owner ILIKE $%d", owner.SearchPattern())
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanRun(s repository.Scanner) (Run, error) {
	var r Run
	err := s.Scan(
		&r.ID,
		&r.Theme,
		&r.Owner,
		&r.Tier,
		&r.PageCount,
		&r.CompletedPages,
		&r.Status,
		&r.Message,
		&r.DocumentKey,
		&r.StartedAt,
		&r.FinishedAt,
	)
	return r, err
}
