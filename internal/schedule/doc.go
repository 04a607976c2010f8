// Package schedule fires scenes and device commands at wall-clock times.
//
// Schedules store minute-resolution times and lowercase weekday names;
// the Scheduler evaluates all enabled schedules once per tick and runs
// the actions of each match sequentially. Overlapping evaluations are
// skipped, not queued.
package schedule
