package domain

import (
	"strings"
)

// DefaultGroupHeaderPrefix is prepended to the date of every group header.
const DefaultGroupHeaderPrefix = "Date: "

// DateGroup is a run of entries sharing the same calendar date.
type DateGroup struct {
	Date    string
	Header  string
	Entries []TimeEntry
}

// GroupByDate buckets entries by their Date, keeping the collection order both
// for the groups (first appearance) and for the entries inside a group.
func GroupByDate(entries []TimeEntry, headerPrefix string) []DateGroup {
	groups := make([]DateGroup, 0)
	index := make(map[string]int)

	for _, entry := range entries {
		key := entry.Date
		if key == "" {
			key = CalendarDate(entry.Start)
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DateGroup{
				Date:   key,
				Header: headerPrefix + key,
			})
		}
		groups[i].Entries = append(groups[i].Entries, entry)
	}

	return groups
}

// FilterEntries keeps the entries whose short text, project or accounting
// name contains query, ignoring case. An empty query keeps everything.
func FilterEntries(entries []TimeEntry, query string) []TimeEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return entries
	}

	filtered := make([]TimeEntry, 0, len(entries))
	for _, entry := range entries {
		haystack := strings.ToLower(entry.ShortText + "\n" + entry.ProjectName + "\n" + entry.AccountingName)
		if strings.Contains(haystack, query) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}
