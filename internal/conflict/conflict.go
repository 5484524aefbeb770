// Package conflict detects overlapping edits of the same post field by
// different authors and resolves them with one of a few naive strategies.
// There is no operational transform here: a resolution picks or concatenates
// whole field values.
package conflict

import (
	"aviators/pkg/domain"
	"aviators/pkg/serrors"
	"cmp"
	"slices"
	"strings"
	"time"
)

// DefaultWindow is how close two edits must be to conflict when no window is given.
const DefaultWindow = 5 * time.Minute

// TagsField is merged as a set instead of concatenated text.
const TagsField = "tags"

// Edit is one author's change of one field of a post.
type Edit struct {
	PostID domain.PostID `json:"postId"`
	Field  string        `json:"field"`
	Author string        `json:"author"`
	Role   domain.Role   `json:"role"`
	// BaseVersion is the post version the edit was made against, 0 if unknown.
	BaseVersion int       `json:"baseVersion"`
	Value       string    `json:"value"`
	At          time.Time `json:"at"`
}

// Conflict is a set of overlapping edits of one field, oldest first.
type Conflict struct {
	PostID domain.PostID `json:"postId"`
	Field  string        `json:"field"`
	Edits  []Edit        `json:"edits"`
}

// Strategy selects how a conflict is resolved.
type Strategy string

const (
	// StrategyLatest keeps the newest edit.
	StrategyLatest Strategy = "latest"
	// StrategyPriority keeps the edit of the most privileged role.
	StrategyPriority Strategy = "priority"
	// StrategyMerge concatenates all distinct values.
	StrategyMerge Strategy = "merge"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyLatest, StrategyPriority, StrategyMerge:
		return st, nil
	default:
		return "", serrors.With(serrors.ErrBadRequest, "unknown conflict strategy %q", s)
	}
}

// Resolution is the outcome of resolving a conflict.
type Resolution struct {
	PostID   domain.PostID `json:"postId"`
	Field    string        `json:"field"`
	Strategy Strategy      `json:"strategy"`
	Value    string        `json:"value"`
	// Winner is the kept edit. It is nil for merges.
	Winner *Edit `json:"winner,omitempty"`
	// Discarded lists the authors whose edits did not survive as is.
	Discarded []string `json:"discarded"`
}

type groupKey struct {
	post  domain.PostID
	field string
}

func overlaps(a, b *Edit, window time.Duration) bool {
	if a.Author == b.Author {
		return false
	}
	if a.BaseVersion > 0 && a.BaseVersion == b.BaseVersion {
		return true
	}
	d := a.At.Sub(b.At)
	if d < 0 {
		d = -d
	}

	return d <= window
}

func byTime(a, b Edit) int {
	if c := a.At.Compare(b.At); c != 0 {
		return c
	}

	return strings.Compare(a.Author, b.Author)
}

// Detect groups edits by post and field and returns every set of edits by
// different authors that are within window of each other or share a base
// version. Overlap is transitive: edits connected through a chain of
// overlaps form one conflict.
func Detect(edits []Edit, window time.Duration) []Conflict {
	if window <= 0 {
		window = DefaultWindow
	}

	groups := map[groupKey][]Edit{}
	for _, e := range edits {
		k := groupKey{e.PostID, e.Field}
		groups[k] = append(groups[k], e)
	}

	var conflicts []Conflict
	for k, group := range groups {
		slices.SortFunc(group, byTime)

		parent := make([]int, len(group))
		for i := range parent {
			parent[i] = i
		}
		var find func(int) int
		find = func(i int) int {
			if parent[i] != i {
				parent[i] = find(parent[i])
			}

			return parent[i]
		}
		for i := range group {
			for j := i + 1; j < len(group); j++ {
				if overlaps(&group[i], &group[j], window) {
					parent[find(j)] = find(i)
				}
			}
		}

		components := map[int][]Edit{}
		roots := []int{}
		for i := range group {
			r := find(i)
			if _, ok := components[r]; !ok {
				roots = append(roots, r)
			}
			components[r] = append(components[r], group[i])
		}
		for _, r := range roots {
			if c := components[r]; len(c) > 1 {
				conflicts = append(conflicts, Conflict{PostID: k.post, Field: k.field, Edits: c})
			}
		}
	}

	slices.SortFunc(conflicts, func(a, b Conflict) int {
		return cmp.Or(
			strings.Compare(a.PostID.String(), b.PostID.String()),
			strings.Compare(a.Field, b.Field),
			a.Edits[0].At.Compare(b.Edits[0].At),
		)
	})

	return conflicts
}

// latest returns the index of the newest edit. Ties go to the author that
// sorts first.
func latest(edits []Edit) int {
	best := 0
	for i := 1; i < len(edits); i++ {
		c := edits[i].At.Compare(edits[best].At)
		if c > 0 || (c == 0 && edits[i].Author < edits[best].Author) {
			best = i
		}
	}

	return best
}

func mergeValues(field string, edits []Edit) string {
	ordered := slices.Clone(edits)
	slices.SortStableFunc(ordered, byTime)

	seen := map[string]bool{}
	var parts []string
	add := func(v, key string) {
		if v != "" && !seen[key] {
			seen[key] = true
			parts = append(parts, v)
		}
	}

	if field == TagsField {
		for _, e := range ordered {
			for _, tag := range strings.Split(e.Value, ",") {
				tag = strings.TrimSpace(tag)
				add(tag, strings.ToLower(tag))
			}
		}

		return strings.Join(parts, ", ")
	}

	for _, e := range ordered {
		v := strings.TrimSpace(e.Value)
		add(v, v)
	}

	return strings.Join(parts, "\n\n")
}

// Resolve settles a conflict with the given strategy.
func Resolve(c Conflict, strategy Strategy) (Resolution, error) {
	if len(c.Edits) == 0 {
		return Resolution{}, serrors.With(serrors.ErrBadRequest, "conflict has no edits")
	}

	res := Resolution{PostID: c.PostID, Field: c.Field, Strategy: strategy, Discarded: []string{}}
	winner := -1
	switch strategy {
	case StrategyLatest:
		winner = latest(c.Edits)
	case StrategyPriority:
		top := slices.MaxFunc(c.Edits, func(a, b Edit) int { return cmp.Compare(a.Role.Rank(), b.Role.Rank()) })
		var candidates []int
		for i := range c.Edits {
			if c.Edits[i].Role.Rank() == top.Role.Rank() {
				candidates = append(candidates, i)
			}
		}
		winner = candidates[0]
		for _, i := range candidates[1:] {
			if latest([]Edit{c.Edits[winner], c.Edits[i]}) == 1 {
				winner = i
			}
		}
	case StrategyMerge:
		res.Value = mergeValues(c.Field, c.Edits)

		return res, nil
	default:
		return Resolution{}, serrors.With(serrors.ErrBadRequest, "unknown conflict strategy %q", strategy)
	}

	w := c.Edits[winner]
	res.Winner = &w
	res.Value = w.Value
	for i, e := range c.Edits {
		if i != winner && !slices.Contains(res.Discarded, e.Author) && e.Author != w.Author {
			res.Discarded = append(res.Discarded, e.Author)
		}
	}

	return res, nil
}
