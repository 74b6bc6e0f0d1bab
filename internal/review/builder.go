// Package review builds and persists the uncertainty review queue: the
// bounded, ranked set of unlabeled items the classifier was least sure
// about, offered to a human for labeling.
package review

import (
	"math"
	"sort"

	"disinfowatch/internal/common"
	"disinfowatch/internal/inference"
	"disinfowatch/internal/metadata"
)

// Item is one review queue line.
type Item struct {
	File        string  `json:"file"`
	Uncertainty float64 `json:"uncertainty"`
	Text        string  `json:"text"`
	Type        string  `json:"type"`
	URL         string  `json:"url,omitempty"`
}

// Builder ranks unlabeled records by classifier uncertainty.
type Builder struct {
	Threshold  float64 // minimum uncertainty to qualify
	Limit      int     // maximum queue length
	PreviewLen int     // text preview length in runes
}

// NewBuilder returns a builder with the given parameters; non-positive limit
// and preview length fall back to the defaults.
func NewBuilder(threshold float64, limit, previewLen int) *Builder {
	if limit <= 0 {
		limit = common.DefaultSampleLimit
	}
	if previewLen <= 0 {
		previewLen = common.DefaultTextPreviewLen
	}
	return &Builder{Threshold: threshold, Limit: limit, PreviewLen: previewLen}
}

// Build computes the queue from the metadata listing, the logged inference
// results keyed by record identity, and the set of already labeled ids.
// Records without any result score maximal uncertainty so that malformed or
// unscored items surface for review instead of vanishing. Ordering is by
// descending uncertainty with ties kept in input order, then truncated to
// the limit.
func (b *Builder) Build(items []metadata.Item, results map[string]inference.Result, labeled map[string]bool) []Item {
	queue := make([]Item, 0, len(items))
	for _, item := range items {
		if labeled[item.Identity] {
			continue
		}

		uncertainty := round4(1.0 - confidenceFor(item, results))
		if uncertainty < b.Threshold {
			continue
		}

		recordType := item.Record.Type
		if recordType == "" {
			recordType = common.TypeUnknown
		}
		queue = append(queue, Item{
			File:        item.Identity,
			Uncertainty: uncertainty,
			Text:        truncateRunes(item.Record.Text, b.PreviewLen),
			Type:        recordType,
			URL:         item.Record.URL,
		})
	}

	// Stable sort keeps equal uncertainties in first-seen order.
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Uncertainty > queue[j].Uncertainty
	})

	if len(queue) > b.Limit {
		queue = queue[:b.Limit]
	}
	return queue
}

// confidenceFor resolves a record's confidence: the logged result wins, then
// a result embedded in the record itself, then zero (maximal uncertainty).
func confidenceFor(item metadata.Item, results map[string]inference.Result) float64 {
	if res, ok := results[item.Identity]; ok {
		return res.Confidence
	}
	if item.Record.Result != nil {
		return item.Record.Result.Confidence
	}
	return 0.0
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
