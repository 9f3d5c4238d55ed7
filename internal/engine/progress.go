package engine

import "math"

const (
	maxIncompleteSamples = 3
	subtaskSamplePrefix  = "(subtask) "
)

type ProgressCount struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type CategoryProgress struct {
	Category Category `json:"id"`
	Label    string   `json:"title"`
	ProgressCount
	IncompleteSamples []string `json:"incompleteTaskSamples"`
}

// ProgressSnapshot summarizes completion over the work categories. It is the
// payload handed to progress analysis.
type ProgressSnapshot struct {
	Overall    ProgressCount      `json:"overall"`
	Categories []CategoryProgress `json:"categories"`
}

// Progress computes the snapshot for s. The reporting category is not counted.
func Progress(s Store) ProgressSnapshot {
	var snap ProgressSnapshot
	for _, c := range WorkCategories {
		completed, total, samples := countForest(s[c])
		snap.Overall.Completed += completed
		snap.Overall.Total += total
		snap.Categories = append(snap.Categories, CategoryProgress{
			Category:          c,
			Label:             c.Label(),
			ProgressCount:     ProgressCount{Completed: completed, Total: total, Percentage: percent(completed, total)},
			IncompleteSamples: samples,
		})
	}
	snap.Overall.Percentage = percent(snap.Overall.Completed, snap.Overall.Total)
	return snap
}

// countForest counts tasks at every depth and collects up to three incomplete
// texts. Samples from deeper levels carry one prefix per level of nesting.
func countForest(forest []Task) (completed, total int, samples []string) {
	samples = []string{}
	for _, t := range forest {
		total++
		if t.Completed {
			completed++
		} else if len(samples) < maxIncompleteSamples {
			samples = append(samples, t.Text)
		}
		if len(t.SubTasks) == 0 {
			continue
		}
		c, n, sub := countForest(t.SubTasks)
		completed += c
		total += n
		for _, s := range sub {
			if len(samples) < maxIncompleteSamples {
				samples = append(samples, subtaskSamplePrefix+s)
			}
		}
	}
	return completed, total, samples
}

func percent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
