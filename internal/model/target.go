package model

import (
	"fmt"
	"strconv"
	"strings"
)

const episodeSep = "_ep"

// TargetID identifies a unit of user selection: a whole entry or a single
// episode of it
type TargetID struct {
	Entry     string
	Episode   uint
	IsEpisode bool
}

// EntryTarget makes a target id for a whole entry
func EntryTarget(id string) TargetID {
	return TargetID{Entry: id}
}

// EpisodeTarget makes a compound target id for one episode
func EpisodeTarget(id string, no uint) TargetID {
	return TargetID{Entry: id, Episode: no, IsEpisode: true}
}

func (t TargetID) String() string {
	if !t.IsEpisode {
		return t.Entry
	}
	return fmt.Sprintf("%s%s%d", t.Entry, episodeSep, t.Episode)
}

// ParseTarget parses a target id from its string form
func ParseTarget(s string) (TargetID, error) {
	if s == "" {
		return TargetID{}, fmt.Errorf("empty target id")
	}
	pos := strings.LastIndex(s, episodeSep)
	if pos <= 0 {
		return EntryTarget(s), nil
	}
	no, err := strconv.ParseUint(s[pos+len(episodeSep):], 10, 32)
	if err != nil {
		// not a compound suffix, the whole string is an entry id
		return EntryTarget(s), nil
	}
	return EpisodeTarget(s[:pos], uint(no)), nil
}

// WorkUnit is one resolved, submittable item of work
type WorkUnit struct {
	// TargetID is the unit key, unique within one resolution pass
	TargetID string

	// SubtitlePath is the subtitle file the unit is made of
	SubtitlePath string

	// Label is a human readable designation of the unit
	Label string
}

// EpisodeRef addresses one episode inside a batch request
type EpisodeRef struct {
	EntryID string
	Episode uint
}
