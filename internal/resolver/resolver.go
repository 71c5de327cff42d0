package resolver

import (
	"fmt"

	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"go-micro.dev/v4/logger"
)

// Resolve turns the user selection into an ordered, deduplicated list of
// submittable work units:
//   - a compound target yields one unit for its episode, if the episode has
//     a subtitle;
//   - a bare series target expands to one unit per episode which has a
//     subtitle and is not annotated yet;
//   - a bare movie target yields one unit from the movie subtitle.
//
// Units are keyed by target id; the first occurrence wins, later duplicates
// are dropped. Output order is insertion order
func Resolve(targets []model.TargetID, entries []*model.LibraryEntry) []model.WorkUnit {
	index := make(map[string]*model.LibraryEntry, len(entries))
	for _, entry := range entries {
		index[entry.ID] = entry
	}

	seen := map[string]struct{}{}
	var units []model.WorkUnit
	emit := func(u model.WorkUnit) {
		if _, ok := seen[u.TargetID]; ok {
			return
		}
		seen[u.TargetID] = struct{}{}
		units = append(units, u)
	}

	for _, target := range targets {
		entry, ok := index[target.Entry]
		if !ok {
			logger.Warnf("Selected entry %s is not in the library anymore", target.Entry)
			continue
		}

		if target.IsEpisode {
			ep := entry.FindEpisode(target.Episode)
			if ep == nil || ep.SubtitlePath == "" {
				continue
			}
			emit(episodeUnit(entry, ep))
			continue
		}

		if entry.IsSeries() {
			for i := range entry.Episodes {
				ep := &entry.Episodes[i]
				// already annotated episodes are excluded from
				// expansion, not merely skipped later
				if ep.SubtitlePath == "" || ep.AnnotationPath != "" {
					continue
				}
				emit(episodeUnit(entry, ep))
			}
			continue
		}

		if entry.SubtitlePath == "" {
			continue
		}
		emit(model.WorkUnit{
			TargetID:     entry.ID,
			SubtitlePath: entry.SubtitlePath,
			Label:        entry.Title,
		})
	}

	return units
}

func episodeUnit(entry *model.LibraryEntry, ep *model.Episode) model.WorkUnit {
	return model.WorkUnit{
		TargetID:     model.EpisodeTarget(entry.ID, ep.Number).String(),
		SubtitlePath: ep.SubtitlePath,
		Label:        fmt.Sprintf("%s 第%d集", entry.Title, ep.Number),
	}
}

// Group splits the selection into whole-entry ids and explicit episode
// descriptors for a batch request. Series are not expanded: the service
// accepts the raw grouped request. Duplicates are dropped, first wins
func Group(targets []model.TargetID) (entryIDs []string, episodes []model.EpisodeRef) {
	seen := map[string]struct{}{}
	for _, target := range targets {
		key := target.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		if target.IsEpisode {
			episodes = append(episodes, model.EpisodeRef{EntryID: target.Entry, Episode: target.Episode})
		} else {
			entryIDs = append(entryIDs, target.Entry)
		}
	}
	return
}
