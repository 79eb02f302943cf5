// Package store defines the collaborator surface the interchange engine
// needs from the host plugin: reading the card collection, reading and
// writing scheduling state, and registering freshly written card files.
// The vault-backed implementation in this package is the production one;
// tests substitute mocks.
package store

import (
	"context"

	"github.com/ctrlaltwill/Sprout-sub003/internal/domain"
)

//go:generate mockgen -source=store.go -destination=../mocks/store/store.go -package=mock_store

// RegisterResult reports the outcome of the sync step for one file.
type RegisterResult struct {
	Parsed int
	Failed int
}

// CardStore is the host-side card collection.
type CardStore interface {
	// AllCards reads every card in the collection.
	AllCards(ctx context.Context) ([]domain.Card, error)
	// Scheduling returns the scheduling state stored for a content hash.
	Scheduling(hash string) (domain.SchedulingState, bool)
	// PutScheduling stores the scheduling state for a content hash.
	PutScheduling(hash string, state domain.SchedulingState) error
	// ReviewLog returns the review history stored for a content hash.
	ReviewLog(hash string) []domain.ReviewLog
	// AppendReviewLog records one review entry for a content hash.
	AppendReviewLog(hash string, entry domain.ReviewLog) error
	// RegisterFile re-parses a written card file and registers its cards
	// in the live collection.
	RegisterFile(ctx context.Context, path string) (RegisterResult, error)
}

// SchedulerSettings exposes the host scheduler parameters the export
// pipeline turns into deck configuration.
type SchedulerSettings interface {
	// LearningSteps returns the learning step lengths in minutes.
	LearningSteps() []float64
	// RelearningSteps returns the relearning step lengths in minutes.
	RelearningSteps() []float64
	// DesiredRetention returns the target retention probability.
	DesiredRetention() float64
	// Weights returns the FSRS parameter vector, empty when unset.
	Weights() []float64
}

// StaticSettings is a SchedulerSettings backed by plain values, used for
// config-driven setups and tests.
type StaticSettings struct {
	LearningStepsMinutes   []float64
	RelearningStepsMinutes []float64
	Retention              float64
	FSRSWeights            []float64
}

var _ SchedulerSettings = StaticSettings{}

func (s StaticSettings) LearningSteps() []float64   { return s.LearningStepsMinutes }
func (s StaticSettings) RelearningSteps() []float64 { return s.RelearningStepsMinutes }
func (s StaticSettings) DesiredRetention() float64  { return s.Retention }
func (s StaticSettings) Weights() []float64         { return s.FSRSWeights }
