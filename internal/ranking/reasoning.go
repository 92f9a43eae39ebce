package ranking

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/nvandessel/synthuser/internal/emotion"
	"github.com/nvandessel/synthuser/internal/models"
)

const (
	reasoningTopN      = 3
	reasoningHighScore = 0.6
	goalPreviewRunes   = 30
)

// Reasoning explains a score in one line: the emotion, up to three strong
// components, and the goal being pursued.
func Reasoning(c Components, state emotion.State, goal *models.Goal) string {
	parts := []string{"Emotion: " + string(state)}

	named := c.Named()
	slices.SortStableFunc(named, func(a, b NamedScore) int {
		return cmp.Compare(b.Score, a.Score)
	})
	for _, n := range named[:reasoningTopN] {
		if n.Score > reasoningHighScore {
			parts = append(parts, fmt.Sprintf("High %s (%.2f)", n.Name, n.Score))
		}
	}

	if goal != nil {
		parts = append(parts, "Goal: "+truncateRunes(goal.Description, goalPreviewRunes)+"...")
	}

	return strings.Join(parts, " | ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
