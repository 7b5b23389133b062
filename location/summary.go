package location

import (
	"errors"
	"sort"

	"github.com/dadata-project/party-stats/dadata"
)

var ErrNoRecords = errors.New("no records to summarize")

type Entry struct {
	Label string
	Count int
}

// Summary is ordered by descending count. Equal counts keep the order in
// which their labels first appeared.
type Summary []Entry

// Summarize resolves every record's address and counts the labels.
func Summarize(records []dadata.CompanyRecord) (Summary, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	index := make(map[string]int)

	var summary Summary

	for i := range records {
		label := Resolve(records[i].Address)

		pos, ok := index[label]
		if !ok {
			index[label] = len(summary)
			summary = append(summary, Entry{Label: label, Count: 1})

			continue
		}

		summary[pos].Count++
	}

	sort.SliceStable(summary, func(i, j int) bool {
		return summary[i].Count > summary[j].Count
	})

	return summary, nil
}

// Counts returns the summary as a label -> count map.
func (s Summary) Counts() map[string]int {
	m := make(map[string]int, len(s))
	for _, e := range s {
		m[e.Label] = e.Count
	}

	return m
}

func (s Summary) Total() int {
	total := 0
	for _, e := range s {
		total += e.Count
	}

	return total
}
