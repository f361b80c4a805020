package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"podsift/internal/services"
	"podsift/internal/shared"
)

var (
	_ list.Item = filterItem{}
	_ list.Item = episodeItem{}
)

// filterItem wraps [shared.FilterRule] to implement [list.Item].
type filterItem struct {
	rule shared.FilterRule
}

func (i filterItem) FilterValue() string { return i.rule.Name }
func (i filterItem) Title() string {
	if i.rule.Name == "" {
		return "Unnamed filter"
	}
	return i.rule.Name
}
func (i filterItem) Description() string {
	desc := fmt.Sprintf("%d pattern(s)", len(i.rule.NamePatterns))
	if len(i.rule.NamePatterns) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.rule.NamePatterns, ", "))
	}
	return desc
}

// episodeItem wraps [services.Episode] to implement [list.Item].
type episodeItem struct {
	episode services.Episode
}

func (i episodeItem) FilterValue() string { return i.episode.Name }
func (i episodeItem) Title() string       { return i.episode.Name }
func (i episodeItem) Description() string {
	desc := i.episode.ReleaseDate
	if i.episode.DurationMS > 0 {
		desc = fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.episode.DurationMS))
	}
	return desc
}
