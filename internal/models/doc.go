// Package models defines the core domain records for the Agent dashboard.
//
// # Records
//
// Each dashboard module owns one or two record types:
//   - Habit / HabitEntry: habit tracking with daily, weekly or monthly cadence
//   - Expense / Payment: budget tracking and scheduled payments
//   - Project / ProjectTask: project boards
//   - FinancialGoal: savings goals with clamped progress
//
// All records share three traits:
//
//  1. Identity: a unique string ID assigned client-side (UUID) before any
//     store round trip, so records created offline keep their identity.
//  2. Ownership: every record belongs to exactly one user ID. In fallback
//     (offline/anonymous) mode the storage layer substitutes a sentinel
//     owner and enforces no isolation.
//  3. Creation timestamp: fixed at insert time, never mutated afterwards.
//
// The shared traits are expressed through the storage.Record constraint;
// every record implements RecordID/SetRecordID, RecordCreatedAt/
// StampCreatedAt, Clone and Validate.
//
// # Design principles
//
//  1. Records are plain structs with JSON tags matching the wire row shape.
//  2. Relationships use ID strings, never pointers, to avoid cycles.
//  3. Monetary amounts are rounded to 2 decimal places before storage.
package models
