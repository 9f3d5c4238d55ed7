package assist

import (
	"fmt"
	"strings"

	"seoboard/internal/engine"
)

func suggestPrompt(label string) string {
	return fmt.Sprintf(
		"Suggest 2-3 concise, actionable SEO tasks appropriate for the '%s' phase of an SEO project. "+
			"These tasks should be unique and not trivial. "+
			"Respond *only* with a valid JSON array of strings, where each string is a task. "+
			`For example: ["First task", "Second task", "Third task"]`,
		label)
}

func analysisPrompt(snap engine.ProgressSnapshot) string {
	var b strings.Builder
	b.WriteString("You are an expert SEO project analyst. Analyze the following project progress and provide actionable insights. The project is divided into categories:\n\n")
	fmt.Fprintf(&b, "Overall Progress: %d/%d tasks completed (%d%%).\n\n",
		snap.Overall.Completed, snap.Overall.Total, snap.Overall.Percentage)
	for _, c := range snap.Categories {
		fmt.Fprintf(&b, "Category: %s\n  - Progress: %d/%d tasks completed (%d%%).\n",
			c.Label, c.Completed, c.Total, c.Percentage)
		if len(c.IncompleteSamples) > 0 {
			fmt.Fprintf(&b, "  - Some pending tasks: %s\n", strings.Join(c.IncompleteSamples, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("Based on this data, provide:\n" +
		"1. A brief, encouraging analysis.\n" +
		"2. Identify 1-2 strengths.\n" +
		"3. Identify 1-2 weaknesses.\n" +
		"4. Offer 2-3 concise, actionable recommendations.\n\n" +
		"Format clearly. Use simple language.")
	return b.String()
}
