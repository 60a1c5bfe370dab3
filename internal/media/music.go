package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/voxreel/voxreel/internal/storage"
)

// libraryTrack is one entry of the curated background-music library kept
// in object storage under the configured prefix.
type libraryTrack struct {
	Key             string
	DurationSeconds float64
	Mood            string
	Tags            []string
}

// defaultLibrary is the curated set shipped with the service. Keys are
// relative to the music prefix in the bucket.
var defaultLibrary = []libraryTrack{
	{Key: "rise-within.mp3", DurationSeconds: 95, Mood: "motivational", Tags: []string{"uplifting", "cinematic", "drums"}},
	{Key: "steady-ground.mp3", DurationSeconds: 120, Mood: "calm", Tags: []string{"ambient", "soft", "piano"}},
	{Key: "last-lap.mp3", DurationSeconds: 88, Mood: "urgent", Tags: []string{"tense", "driving", "electronic"}},
	{Key: "paper-kites.mp3", DurationSeconds: 104, Mood: "playful", Tags: []string{"light", "acoustic", "whistle"}},
	{Key: "long-road.mp3", DurationSeconds: 132, Mood: "reflective", Tags: []string{"cinematic", "strings", "slow"}},
}

// LibraryMusicSelector picks background music from a track library hosted
// in object storage.
type LibraryMusicSelector struct {
	storage storage.ObjectStorage
	prefix  string
	tracks  []libraryTrack
}

// NewLibraryMusicSelector creates a selector over the default library.
// Parameters:
//   - objectStorage: storage used to resolve public track URLs.
//   - prefix: key prefix of the music library inside the bucket.
//
// Returns:
//   - *LibraryMusicSelector: initialized selector.
func NewLibraryMusicSelector(objectStorage storage.ObjectStorage, prefix string) *LibraryMusicSelector {
	return &LibraryMusicSelector{
		storage: objectStorage,
		prefix:  prefix,
		tracks:  defaultLibrary,
	}
}

// SelectTrack returns the best library match for the mood and tags.
// Mood match outweighs tag overlap; with no match at all the first track
// is returned so a reel never ships silent by accident.
func (s *LibraryMusicSelector) SelectTrack(ctx context.Context, mood string, tags []string) (*MusicTrack, error) {
	if len(s.tracks) == 0 {
		return nil, fmt.Errorf("music library is empty")
	}

	best := s.tracks[0]
	bestScore := -1
	for _, track := range s.tracks {
		score := 0
		if strings.EqualFold(track.Mood, mood) {
			score += 10
		}
		for _, want := range tags {
			for _, have := range track.Tags {
				if strings.EqualFold(want, have) {
					score++
				}
			}
		}
		if score > bestScore {
			best = track
			bestScore = score
		}
	}

	return &MusicTrack{
		URL:             s.storage.GetURL(s.prefix + best.Key),
		DurationSeconds: best.DurationSeconds,
		Mood:            best.Mood,
		Tags:            best.Tags,
	}, nil
}
