// Package goals derives a user's daily activity goals from their
// physiological profile. It holds the three metric calculators (steps,
// calories, heart points), the fallback generator that guarantees a safe
// default for any metric, and the orchestrator that assembles a complete
// goal set. All computation here is pure: no I/O, no randomness, identical
// inputs always produce identical outputs.
package goals
