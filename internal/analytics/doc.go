// Package analytics provides the derived-state computations over
// collection snapshots: habit streaks and completion rates, budget
// category roll-ups and payment/expense linkage matching.
//
// Everything here is a pure function of its inputs. Nothing is cached;
// callers recompute from the latest snapshot on every change, which keeps
// the derived numbers trivially consistent with the record set.
package analytics
