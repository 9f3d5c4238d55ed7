package engine

import "strconv"

// builtinChecklist is the starter SEO checklist every new project begins with.
func builtinChecklist() map[Category][]string {
	return map[Category][]string{
		CategoryStart: {
			"Align SEO goals with business goals.",
			"Define measurable key performance indicators (KPIs).",
			"Install and configure Google Analytics 4.",
			"Add and verify the site in Google Search Console.",
			"Configure goal and conversion event tracking in GA4.",
			"Record baseline traffic and ranking metrics.",
			"Set up a keyword rank tracking tool.",
			"Run an initial technical audit for critical issues.",
			"Review and optimize robots.txt.",
			"Validate and submit the XML sitemap.",
			"Assess mobile friendliness.",
			"Measure initial site speed and Core Web Vitals.",
			"Check index coverage of key pages in GSC.",
			"Check for manual actions in GSC.",
			"Identify duplicate content issues.",
			"Analyze site structure and information architecture.",
			"Define target audience personas.",
			"Identify main competitors in the SERPs.",
			"Research seed keywords.",
			"Expand the keyword list with long-tail phrases.",
			"Group keywords by search intent.",
			"Analyze competitor domain strength and backlink profiles.",
			"Review competitor content strategy and main topics.",
			"Run a keyword gap analysis against competitors.",
			"Audit on-page SEO elements of key pages.",
			"Map keywords to pages.",
			"Audit the site's current backlink profile.",
			"Identify toxic or low-quality backlinks.",
			"Draft an initial content calendar.",
			"Set up a monthly reporting framework for stakeholders.",
		},
		CategoryDaily: {
			"Check site indexing",
			"Review Search Console reports",
		},
		CategoryWeekly: {
			"Review backlinks",
			"Analyze keyword rankings",
		},
		CategoryMonthly: {
			"Analyze competitors",
			"Prepare performance report",
		},
		CategoryCompleted: {
			"Collect monthly performance data",
			"Draft the monthly report",
			"Send the report to the client and collect feedback",
		},
	}
}

var defaultIDPrefix = map[Category]string{
	CategoryStart:     "s",
	CategoryDaily:     "d",
	CategoryWeekly:    "w",
	CategoryMonthly:   "m",
	CategoryCompleted: "c",
}

// DefaultForest returns the starter forest of one category with stable ids.
func DefaultForest(c Category) []Task {
	texts := builtinChecklist()[c]
	out := make([]Task, 0, len(texts))
	for i, text := range texts {
		out = append(out, newTask(defaultIDPrefix[c]+strconv.Itoa(i+1), text, ""))
	}
	return out
}

// DefaultStore returns a store holding the starter checklist for every category.
func DefaultStore() Store {
	s := make(Store, len(Categories))
	for _, c := range Categories {
		s[c] = DefaultForest(c)
	}
	return s
}
