package curriculum

import "strings"

// Classify converts one raw authored concept into exactly one tagged Item.
// The declared type is advisory only; shape-based inference fills in for
// missing or garbled declarations, and the statement catch-all guarantees
// that no concept is ever silently discarded.
func Classify(c RawConcept) Item {
	item := Item{
		ImageURL: firstNonEmpty(c.ImageURL, c.Image),
		Images:   dropEmpty(c.Images),
	}

	declared := strings.ToLower(strings.TrimSpace(c.Type))

	// presence of the array matters, not its length: an authored empty
	// `options` list still marks a multiple-choice question
	isMCQ := declared == KindMultipleChoice || declared == "mcq" ||
		(c.Options != nil && c.Question != "")
	isFIB := declared == KindFillInTheBlank || declared == "fillups" || declared == "fill-in" ||
		(c.Question != "" && c.Answer.Defined && c.Options == nil && c.Words == nil)
	isRearrange := declared == KindRearrange || c.Words != nil
	isStatement := declared == KindStatement || declared == "concept" || declared == "text" ||
		(!isMCQ && !isFIB && !isRearrange && (c.Text != "" || c.Content != ""))

	switch {
	case isStatement:
		item.Kind = KindStatement
		item.Text = firstNonEmpty(c.Text, c.Content)
	case isMCQ:
		item.Kind = KindMultipleChoice
		item.Question = c.Question
		item.Options = dropEmpty(c.Options)
		item.Answer = c.Answer.Value
	case isFIB:
		item.Kind = KindFillInTheBlank
		item.Question = c.Question
		item.Answer = c.Answer.Value
	case isRearrange:
		item.Kind = KindRearrange
		item.Question = c.Question
		words := c.Words
		if len(words) == 0 {
			words = c.Options
		}
		words = dropEmpty(words)
		// mirrored so older readers that only know `options` keep working
		item.Words = words
		item.Options = words
		item.Answer = c.Answer.Value
	default:
		// no type-identifying fields at all: preserve whatever is there
		item.Kind = KindStatement
		item.Text = firstNonEmpty(c.Text, c.Question, c.Raw())
	}
	return item
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
