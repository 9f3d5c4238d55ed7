package engine

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryStart     Category = "start"
	CategoryDaily     Category = "daily"
	CategoryWeekly    Category = "weekly"
	CategoryMonthly   Category = "monthly"
	CategoryCompleted Category = "completed"
)

// Categories lists every category in display and export order.
var Categories = []Category{
	CategoryStart,
	CategoryDaily,
	CategoryWeekly,
	CategoryMonthly,
	CategoryCompleted,
}

// WorkCategories are the categories that accept new tasks and filters.
var WorkCategories = []Category{
	CategoryStart,
	CategoryDaily,
	CategoryWeekly,
	CategoryMonthly,
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryStart, CategoryDaily, CategoryWeekly, CategoryMonthly, CategoryCompleted:
		return true
	default:
		return false
	}
}

// IsReporting reports whether c is the reporting category, which only exposes
// its own process checklist plus the progress aggregate.
func (c Category) IsReporting() bool { return c == CategoryCompleted }

func (c Category) Label() string {
	switch c {
	case CategoryStart:
		return "Project start"
	case CategoryDaily:
		return "Daily"
	case CategoryWeekly:
		return "Weekly"
	case CategoryMonthly:
		return "Monthly"
	case CategoryCompleted:
		return "Reports"
	default:
		return string(c)
	}
}

func (c Category) Title() string {
	switch c {
	case CategoryStart:
		return "SEO project kickoff"
	case CategoryDaily:
		return "Daily tasks"
	case CategoryWeekly:
		return "Weekly tasks"
	case CategoryMonthly:
		return "Monthly tasks"
	case CategoryCompleted:
		return "Reports and progress summary"
	default:
		return string(c)
	}
}

// ParseCategory accepts a category id, a few aliases, or its 1-based position.
func ParseCategory(input string) (Category, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "start", "s", "1", "kickoff":
		return CategoryStart, nil
	case "daily", "d", "2":
		return CategoryDaily, nil
	case "weekly", "w", "3":
		return CategoryWeekly, nil
	case "monthly", "m", "4":
		return CategoryMonthly, nil
	case "completed", "reports", "reporting", "r", "5":
		return CategoryCompleted, nil
	default:
		return "", fmt.Errorf("unknown category: %q", input)
	}
}
