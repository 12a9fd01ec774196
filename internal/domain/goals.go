package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Metric identifies one of the three daily activity goals the engine derives.
// The set is closed: there are exactly three metrics plus their fallbacks,
// enumerated at compile time rather than registered dynamically.
type Metric string

// The three goal metrics.
const (
	MetricSteps       Metric = "steps"
	MetricCalories    Metric = "calories"
	MetricHeartPoints Metric = "heart_points"
)

// Metrics returns the closed set of goal metrics in a stable order.
func Metrics() []Metric {
	return []Metric{MetricSteps, MetricCalories, MetricHeartPoints}
}

// GoalSource tags how a goal value was produced.
type GoalSource string

const (
	// GoalSourceCalculated marks a goal produced by the metric's own
	// calculator from the user's profile.
	GoalSourceCalculated GoalSource = "calculated"

	// GoalSourceFallback marks a goal substituted by the fallback generator
	// because the calculator could not produce a value.
	GoalSourceFallback GoalSource = "fallback"
)

// Goal is a single daily target, tagged with the metric it applies to and
// how it was derived. Values are always strictly positive.
type Goal struct {
	Metric Metric     `json:"metric"`
	Value  int        `json:"value"`
	Source GoalSource `json:"source"`
}

// Validate checks the goal's invariants: positive value, known metric and
// known source tag.
func (g Goal) Validate() error {
	if g.Value <= 0 {
		return fmt.Errorf("%w: %s value must be positive, got %d", ErrInvalidGoal, g.Metric, g.Value)
	}
	switch g.Metric {
	case MetricSteps, MetricCalories, MetricHeartPoints:
	default:
		return fmt.Errorf("%w: unknown metric %q", ErrInvalidGoal, g.Metric)
	}
	switch g.Source {
	case GoalSourceCalculated, GoalSourceFallback:
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidGoal, g.Source)
	}
	return nil
}

// GoalSet is a complete set of daily goals for one user. It is never
// partially populated: any calculator failure is masked by the fallback
// generator before a GoalSet is returned, so all three goals are always
// present and strictly positive.
type GoalSet struct {
	UserID      uuid.UUID `json:"user_id"`
	Steps       Goal      `json:"steps"`
	Calories    Goal      `json:"calories"`
	HeartPoints Goal      `json:"heart_points"`
	ComputedAt  time.Time `json:"computed_at"`
}

// Goals returns the three goals in metric order.
func (gs *GoalSet) Goals() []Goal {
	return []Goal{gs.Steps, gs.Calories, gs.HeartPoints}
}

// Goal returns the goal for the given metric. The boolean is false for an
// unknown metric.
func (gs *GoalSet) Goal(metric Metric) (Goal, bool) {
	switch metric {
	case MetricSteps:
		return gs.Steps, true
	case MetricCalories:
		return gs.Calories, true
	case MetricHeartPoints:
		return gs.HeartPoints, true
	}
	return Goal{}, false
}

// Validate checks the GoalSet's completeness invariant: an owner, a
// computation timestamp, and three valid goals under their expected metrics.
func (gs *GoalSet) Validate() error {
	if gs.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if gs.ComputedAt.IsZero() {
		return fmt.Errorf("%w: missing computation timestamp", ErrValidation)
	}
	for _, pair := range []struct {
		want Metric
		goal Goal
	}{
		{MetricSteps, gs.Steps},
		{MetricCalories, gs.Calories},
		{MetricHeartPoints, gs.HeartPoints},
	} {
		if pair.goal.Metric != pair.want {
			return fmt.Errorf("%w: goal tagged %q stored under %q", ErrInvalidGoal, pair.goal.Metric, pair.want)
		}
		if err := pair.goal.Validate(); err != nil {
			return err
		}
	}
	return nil
}
