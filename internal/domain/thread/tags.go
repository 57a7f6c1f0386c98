// internal/domain/thread/tags.go
package thread

import (
	"regexp"
	"sort"
	"strings"
)

var tagPattern = regexp.MustCompile(`[@#]\w+`)

// SegmentKind tells plain text apart from mentions and hashtags.
type SegmentKind string

const (
	SegmentText    SegmentKind = "text"
	SegmentMention SegmentKind = "mention"
	SegmentHashtag SegmentKind = "hashtag"
)

// Segment is a slice of post content for rendering.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text"`
}

// Segments splits content into text, @mention and #hashtag runs.
func Segments(content string) []Segment {
	var out []Segment
	last := 0
	for _, loc := range tagPattern.FindAllStringIndex(content, -1) {
		if loc[0] > last {
			out = append(out, Segment{Kind: SegmentText, Text: content[last:loc[0]]})
		}
		tok := content[loc[0]:loc[1]]
		kind := SegmentHashtag
		if strings.HasPrefix(tok, "@") {
			kind = SegmentMention
		}
		out = append(out, Segment{Kind: kind, Text: tok})
		last = loc[1]
	}
	if last < len(content) {
		out = append(out, Segment{Kind: SegmentText, Text: content[last:]})
	}
	return out
}

// Hashtags returns the distinct hashtags of content in order of appearance.
func Hashtags(content string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, s := range Segments(content) {
		if s.Kind != SegmentHashtag {
			continue
		}
		if _, ok := seen[s.Text]; ok {
			continue
		}
		seen[s.Text] = struct{}{}
		out = append(out, s.Text)
	}
	return out
}

// TagCount is a hashtag and the number of threads using it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Trending counts hashtags over threads (once per thread) and returns the
// top n, ties broken alphabetically.
func Trending(threads []Thread, n int) []TagCount {
	counts := map[string]int{}
	for _, t := range threads {
		for _, tag := range Hashtags(t.Content) {
			counts[tag]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, c := range counts {
		out = append(out, TagCount{Tag: tag, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
