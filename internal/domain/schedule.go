package domain

import (
	"encoding"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Stage is the lifecycle stage of a card's scheduling state.
type Stage int

const (
	StageNew Stage = iota + 1
	StageLearning
	StageReview
	StageRelearning
	StageSuspended
)

var (
	stageNames = [...]string{
		StageNew:        "new",
		StageLearning:   "learning",
		StageReview:     "review",
		StageRelearning: "relearning",
		StageSuspended:  "suspended",
	}
	stageByName = map[string]Stage{
		"new":        StageNew,
		"learning":   StageLearning,
		"review":     StageReview,
		"relearning": StageRelearning,
		"suspended":  StageSuspended,
	}
)

var (
	_ fmt.Stringer             = Stage(0)
	_ encoding.TextMarshaler   = Stage(0)
	_ encoding.TextUnmarshaler = (*Stage)(nil)
)

func (s Stage) isValid() bool {
	return s >= StageNew && s <= StageSuspended
}

func (s Stage) String() string {
	if s.isValid() {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	if !s.isValid() {
		return nil, fmt.Errorf("invalid stage: %d", int(s))
	}
	return []byte(stageNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(text []byte) error {
	v, ok := stageByName[string(text)]
	if !ok {
		return fmt.Errorf("invalid stage: %q", text)
	}
	*s = v
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface
func (s Stage) MarshalYAML() (interface{}, error) {
	if !s.isValid() {
		return nil, fmt.Errorf("invalid stage: %d", int(s))
	}
	return stageNames[s], nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface
func (s *Stage) UnmarshalYAML(value *yaml.Node) error {
	return s.UnmarshalText([]byte(value.Value))
}

// SchedulingState is the memory state attached to a card. Due is an
// absolute timestamp in milliseconds regardless of stage; the Anki side
// switches the due basis per card type during conversion.
type SchedulingState struct {
	Stage Stage `yaml:"stage"`
	// PrevStage records the lifecycle stage a suspended card was in, so
	// suspension round-trips without losing the underlying type.
	PrevStage     Stage   `yaml:"prev_stage,omitempty"`
	DueMillis     int64   `yaml:"due"`
	Reps          int     `yaml:"reps"`
	Lapses        int     `yaml:"lapses"`
	Stability     float64 `yaml:"stability"`
	Difficulty    float64 `yaml:"difficulty"`
	ScheduledDays int     `yaml:"scheduled_days"`
}

// ReviewResult is the outcome recorded for a single review.
type ReviewResult int

const (
	ResultAgain ReviewResult = iota + 1
	ResultFail
	ResultHard
	ResultGood
	ResultPass
	ResultSkip
	ResultEasy
)

var (
	resultNames = [...]string{
		ResultAgain: "again",
		ResultFail:  "fail",
		ResultHard:  "hard",
		ResultGood:  "good",
		ResultPass:  "pass",
		ResultSkip:  "skip",
		ResultEasy:  "easy",
	}
	resultByName = map[string]ReviewResult{
		"again": ResultAgain,
		"fail":  ResultFail,
		"hard":  ResultHard,
		"good":  ResultGood,
		"pass":  ResultPass,
		"skip":  ResultSkip,
		"easy":  ResultEasy,
	}
)

var (
	_ fmt.Stringer             = ReviewResult(0)
	_ encoding.TextMarshaler   = ReviewResult(0)
	_ encoding.TextUnmarshaler = (*ReviewResult)(nil)
)

func (r ReviewResult) isValid() bool {
	return r >= ResultAgain && r <= ResultEasy
}

func (r ReviewResult) String() string {
	if r.isValid() {
		return resultNames[r]
	}
	return fmt.Sprintf("ReviewResult(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r ReviewResult) MarshalText() ([]byte, error) {
	if !r.isValid() {
		return nil, fmt.Errorf("invalid review result: %d", int(r))
	}
	return []byte(resultNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *ReviewResult) UnmarshalText(text []byte) error {
	v, ok := resultByName[string(text)]
	if !ok {
		return fmt.Errorf("invalid review result: %q", text)
	}
	*r = v
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface
func (r ReviewResult) MarshalYAML() (interface{}, error) {
	if !r.isValid() {
		return nil, fmt.Errorf("invalid review result: %d", int(r))
	}
	return resultNames[r], nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface
func (r *ReviewResult) UnmarshalYAML(value *yaml.Node) error {
	return r.UnmarshalText([]byte(value.Value))
}

// ReviewLog records one review of a card.
type ReviewLog struct {
	Result           ReviewResult `yaml:"result"`
	ReviewedAtMillis int64        `yaml:"reviewed_at"`
	PrevDueMillis    int64        `yaml:"prev_due"`
	NextDueMillis    int64        `yaml:"next_due"`
	ElapsedMillis    int64        `yaml:"elapsed_ms"`
}
