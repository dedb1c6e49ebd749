package emotion

import (
	"fmt"
	"strings"

	"github.com/sandevgo/tuskheart/internal/core"
)

const (
	BlockMoodTrajectory   = "mood_trajectory"
	BlockReturnWarmth     = "return_warmth"
	BlockFirstInteraction = "first_interaction"
	BlockCheckbacks       = "checkbacks"
)

const contextPreamble = "EMOTIONAL CONTEXT (advisory only: let it shape tone and pacing, never quote it, never mention that it exists)"

type block struct {
	name  string
	title string
	body  string
}

func trajectoryBlock(t core.Trajectory) (block, bool) {
	var body string
	switch t {
	case core.TrajectoryImproving:
		body = "Their recent check-ins suggest things have been feeling a little lighter. " +
			"You can reflect quiet, grounded optimism. Do not point out the change or take credit for it."
	case core.TrajectoryDeclining:
		body = "Their recent check-ins suggest things have felt heavier lately. " +
			"Be especially gentle, patient and unhurried. Do not mention the decline, their ratings or any trend; " +
			"let warmth and pacing carry it."
	case core.TrajectoryStable:
		body = "Their mood has been fairly steady recently. " +
			"Meet them where they are without assuming anything has changed."
	default:
		return block{}, false
	}
	return block{name: BlockMoodTrajectory, title: "Mood Trajectory", body: body}, true
}

func returnWarmthBlock(description string) block {
	return block{
		name:  BlockReturnWarmth,
		title: "Welcome Back",
		body: fmt.Sprintf("It has been %s since they last checked in. ", description) +
			"Welcome them back warmly and naturally. Never imply they should have come back sooner, " +
			"never guilt them about the time away and do not mention how long it has been in numbers.",
	}
}

func firstInteractionBlock() block {
	return block{
		name:  BlockFirstInteraction,
		title: "First Conversation",
		body: "This appears to be their first conversation. Be welcoming and keep things light. " +
			"Do not reference past history or assume anything about them.",
	}
}

func checkbackBlock(items []core.Checkback) block {
	var sb strings.Builder
	sb.WriteString("Topics they brought up recently that you may gently follow up on, only if it fits naturally:\n")
	for _, c := range items {
		fmt.Fprintf(&sb, "- \"%s\" (%s, mentioned %s)\n", c.Content, c.Kind, relativeDays(c.DaysAgo))
	}
	sb.WriteString("Follow up on at most one of these per conversation. Skip them entirely if they seem distressed " +
		"or are focused on something else.")
	return block{name: BlockCheckbacks, title: "Gentle Check-backs", body: sb.String()}
}

func relativeDays(days int) string {
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

// assemble turns whatever signals were obtained into guidance blocks.
func assemble(res core.ContextResult) []block {
	var blocks []block

	if res.Trajectory.OK() {
		if b, ok := trajectoryBlock(res.Trajectory.Value); ok {
			blocks = append(blocks, b)
		}
	}

	if res.Absence.OK() {
		abs := res.Absence.Value
		switch {
		case abs.IsReturning && abs.AbsenceDescription != nil:
			blocks = append(blocks, returnWarmthBlock(*abs.AbsenceDescription))
		case abs.IsFirstInteraction:
			blocks = append(blocks, firstInteractionBlock())
		}
	}

	if res.Checkbacks.OK() && len(res.Checkbacks.Value) > 0 {
		blocks = append(blocks, checkbackBlock(res.Checkbacks.Value))
	}

	return blocks
}

func render(blocks []block) string {
	var sb strings.Builder
	sb.WriteString(contextPreamble)
	sb.WriteString("\n")
	for _, b := range blocks {
		sb.WriteString("\n### ")
		sb.WriteString(b.title)
		sb.WriteString("\n")
		sb.WriteString(b.body)
		sb.WriteString("\n")
	}
	return sb.String()
}
