package selector

import (
	"sort"
	"strings"

	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"github.com/antzucaro/matchr"
	"go-micro.dev/v4/logger"
)

const (
	defaultMinScore = 0.8
	substringScore  = 0.9
)

// TitleMatcher ranks library entries against a free-form query
type TitleMatcher struct {
	// MinScore cuts off weak matches, 0 means the default threshold
	MinScore float64
}

type Match struct {
	Entry *model.LibraryEntry
	Score float64
}

// Select ranks entries by title similarity to the query and returns the
// matches above the threshold, best first. Ordering between equal scores
// follows the input order
func (s TitleMatcher) Select(query string, entries []*model.LibraryEntry) []Match {
	minScore := s.MinScore
	if minScore <= 0 {
		minScore = defaultMinScore
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	matches := make([]Match, 0, len(entries))
	for _, entry := range entries {
		score := rankByTitle(q, entry.Title)
		logger.Tracef("'%s' rank by title: %.4f", entry.Title, score)
		if score >= minScore {
			matches = append(matches, Match{Entry: entry, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

func rankByTitle(query, title string) float64 {
	lowered := strings.ToLower(title)
	score := matchr.JaroWinkler(query, lowered, true)
	if strings.Contains(lowered, query) && score < substringScore {
		score = substringScore
	}
	return score
}
