package services

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// LinkSuggestion proposes a wiki reference the author has not made yet
type LinkSuggestion struct {
	Title         string  `json:"title"`
	SuggestedLink string  `json:"suggested_link"`
	Confidence    float64 `json:"confidence"`
	Reason        string  `json:"reason"`
}

// SuggestLinks scans content for mentions of known document titles and
// proposes [[Title]] references. Exact title phrases score highest; single
// word overlaps score lower. One suggestion per title, best score wins.
func SuggestLinks(content string, titles []string) []LinkSuggestion {
	words := strings.Fields(strings.ToLower(content))
	best := make(map[string]LinkSuggestion)

	consider := func(s LinkSuggestion) {
		if cur, ok := best[s.Title]; !ok || s.Confidence > cur.Confidence {
			best[s.Title] = s
		}
	}

	for _, title := range titles {
		titleWords := strings.Fields(strings.ToLower(title))
		if len(titleWords) == 0 {
			continue
		}

		for i := 0; i+len(titleWords) <= len(words); i++ {
			if equalFold(words[i:i+len(titleWords)], titleWords) {
				consider(LinkSuggestion{
					Title:         title,
					SuggestedLink: "[[" + title + "]]",
					Confidence:    1.0,
					Reason:        "exact title match",
				})
				break
			}
		}

		lowerTitle := strings.ToLower(title)
		for _, w := range words {
			if utf8.RuneCountInString(w) > 3 && strings.Contains(lowerTitle, w) {
				consider(LinkSuggestion{
					Title:         title,
					SuggestedLink: "[[" + title + "]]",
					Confidence:    0.5,
					Reason:        fmt.Sprintf("contains word %q", w),
				})
				break
			}
		}
	}

	result := make([]LinkSuggestion, 0, len(best))
	for _, s := range best {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Confidence != result[j].Confidence {
			return result[i].Confidence > result[j].Confidence
		}
		return result[i].Title < result[j].Title
	})
	return result
}

func equalFold(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.Trim(a[i], ".,;:!?") != b[i] {
			return false
		}
	}
	return true
}
