// Package news prepares headline lists and ranks headline terms by TF-IDF.
package news

import (
	"slices"
	"sort"
	"strings"

	"github.com/aristath/finlookup/internal/domain"
)

// titleSeparators are trimmed from both ends of a title once sources are removed.
const titleSeparators = " \t:：-–—|｜"

// Prepare orders the headlines most recent first, drops duplicate links (keeping
// the first occurrence in that order, i.e. the most recent) and removes every
// source name from every title. Source names are matched literally.
func Prepare(rows []domain.NewsRecord) []domain.NewsRecord {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b domain.NewsRecord) int {
		return b.Date.Compare(a.Date)
	})

	seen := make(map[string]struct{}, len(sorted))
	sourceSet := make(map[string]struct{})
	out := make([]domain.NewsRecord, 0, len(sorted))
	for _, r := range sorted {
		if _, dup := seen[r.Link]; dup {
			continue
		}
		seen[r.Link] = struct{}{}
		out = append(out, r)
		if s := strings.TrimSpace(r.Source); s != "" {
			sourceSet[s] = struct{}{}
		}
	}

	sources := make([]string, 0, len(sourceSet))
	for s := range sourceSet {
		sources = append(sources, s)
	}
	// longest first, so "XYZ News" is removed before "XYZ"
	sort.Slice(sources, func(i, j int) bool {
		if len(sources[i]) != len(sources[j]) {
			return len(sources[i]) > len(sources[j])
		}
		return sources[i] < sources[j]
	})

	for i := range out {
		out[i].Title = StripSources(out[i].Title, sources)
	}
	return out
}

// StripSources removes each source from title as a literal substring.
func StripSources(title string, sources []string) string {
	for _, s := range sources {
		if s == "" {
			continue
		}
		title = strings.ReplaceAll(title, s, "")
	}
	return strings.Trim(title, titleSeparators)
}
