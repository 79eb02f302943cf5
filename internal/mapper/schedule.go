package mapper

import (
	"math"

	"github.com/ctrlaltwill/Sprout-sub003/internal/anki"
	"github.com/ctrlaltwill/Sprout-sub003/internal/domain"
)

const (
	millisPerSecond = 1000
	secondsPerDay   = 86400
	millisPerDay    = millisPerSecond * secondsPerDay
)

// defaultDifficulty stands in when a card row carries no usable factor.
const defaultDifficulty = 5.0

// StageToTypeQueue maps a native lifecycle stage to the (type, queue)
// pair of a cards row. For suspended cards the type of the underlying
// stage is preserved and only the queue marks suspension.
func StageToTypeQueue(stage, prevStage domain.Stage) (cardType, queue int) {
	switch stage {
	case domain.StageNew:
		return anki.CardTypeNew, anki.QueueNew
	case domain.StageLearning:
		return anki.CardTypeLearning, anki.QueueLearning
	case domain.StageReview:
		return anki.CardTypeReview, anki.QueueReview
	case domain.StageRelearning:
		return anki.CardTypeRelearning, anki.QueueLearning
	case domain.StageSuspended:
		underlying := prevStage
		if underlying == 0 || underlying == domain.StageSuspended {
			underlying = domain.StageNew
		}
		cardType, _ = StageToTypeQueue(underlying, 0)
		return cardType, anki.QueueSuspended
	default:
		return anki.CardTypeNew, anki.QueueNew
	}
}

// TypeQueueToStage reconstructs the native stage from a (type, queue)
// pair. The suspended queue dominates: the lifecycle type is reported as
// the previous stage so a later export round-trips.
func TypeQueueToStage(cardType, queue int) (stage, prevStage domain.Stage) {
	byType := func(t int) domain.Stage {
		switch t {
		case anki.CardTypeLearning:
			return domain.StageLearning
		case anki.CardTypeReview:
			return domain.StageReview
		case anki.CardTypeRelearning:
			return domain.StageRelearning
		default:
			return domain.StageNew
		}
	}
	if queue == anki.QueueSuspended {
		return domain.StageSuspended, byType(cardType)
	}
	return byType(cardType), 0
}

// AbsoluteToReviewDue converts an absolute due timestamp in milliseconds
// to the review-card due basis: whole days elapsed since collection
// creation, floored and never negative.
func AbsoluteToReviewDue(dueMillis, creationSeconds int64) int64 {
	days := int64(math.Floor(float64(dueMillis-creationSeconds*millisPerSecond) / float64(millisPerDay)))
	if days < 0 {
		return 0
	}
	return days
}

// ReviewDueToAbsolute is the inverse of AbsoluteToReviewDue for
// day-aligned timestamps.
func ReviewDueToAbsolute(dueDays, creationSeconds int64) int64 {
	return (creationSeconds + dueDays*secondsPerDay) * millisPerSecond
}

// AbsoluteToLearningDue converts absolute milliseconds to the
// learning-card due basis of absolute epoch seconds.
func AbsoluteToLearningDue(dueMillis int64) int64 {
	return dueMillis / millisPerSecond
}

// LearningDueToAbsolute is the inverse of AbsoluteToLearningDue.
func LearningDueToAbsolute(dueSeconds int64) int64 {
	return dueSeconds * millisPerSecond
}

// DueValue picks the due basis by stage: new cards are always due 0,
// learning and relearning cards use absolute seconds, review cards use
// days since collection creation. Suspended cards follow their
// underlying stage.
func DueValue(state domain.SchedulingState, creationSeconds int64) int64 {
	stage := state.Stage
	if stage == domain.StageSuspended {
		stage = state.PrevStage
	}
	switch stage {
	case domain.StageLearning, domain.StageRelearning:
		return AbsoluteToLearningDue(state.DueMillis)
	case domain.StageReview:
		return AbsoluteToReviewDue(state.DueMillis, creationSeconds)
	default:
		return 0
	}
}

// AbsoluteDue reconstructs the absolute due timestamp from a card row's
// due value, inverting DueValue's basis rules.
func AbsoluteDue(cardType, queue int, due, creationSeconds int64) int64 {
	stage, prev := TypeQueueToStage(cardType, queue)
	if stage == domain.StageSuspended {
		stage = prev
	}
	switch stage {
	case domain.StageLearning, domain.StageRelearning:
		return LearningDueToAbsolute(due)
	case domain.StageReview:
		return ReviewDueToAbsolute(due, creationSeconds)
	default:
		return 0
	}
}

// DifficultyToFactor maps FSRS difficulty (1..10) to Anki's ease factor
// in permille via the affine map factor = round(d*100 + 100).
func DifficultyToFactor(difficulty float64) int {
	return int(math.Round(difficulty*100 + 100))
}

// FactorToDifficulty inverts DifficultyToFactor. Non-positive factors
// (cards never scheduled by FSRS) map to the neutral default difficulty.
func FactorToDifficulty(factor int) float64 {
	if factor <= 0 {
		return defaultDifficulty
	}
	return float64(factor-100) / 100
}

// ResultToEase maps a native review result onto the 1-4 ease buttons.
func ResultToEase(result domain.ReviewResult) int {
	switch result {
	case domain.ResultAgain, domain.ResultFail:
		return 1
	case domain.ResultHard:
		return 2
	case domain.ResultGood, domain.ResultPass, domain.ResultSkip:
		return 3
	case domain.ResultEasy:
		return 4
	default:
		return 3
	}
}

// EaseToResult maps an ease button back to the closest native result.
func EaseToResult(ease int) domain.ReviewResult {
	switch ease {
	case 1:
		return domain.ResultAgain
	case 2:
		return domain.ResultHard
	case 4:
		return domain.ResultEasy
	default:
		return domain.ResultGood
	}
}

// IntervalDays derives a review interval in whole days from the previous
// and next due timestamps.
func IntervalDays(prevDueMillis, nextDueMillis int64) int {
	if nextDueMillis <= prevDueMillis {
		return 0
	}
	return int((nextDueMillis - prevDueMillis) / millisPerDay)
}
