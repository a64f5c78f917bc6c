package service

import "errors"

var (
	// ErrFrequencyChange is returned when an update tries to change a
	// habit's frequency. Historical entries are keyed by the period
	// scheme of the original frequency and there is no migration path,
	// so frequency edits are rejected outright.
	ErrFrequencyChange = errors.New("habit frequency cannot be changed after creation")

	// ErrLinkedExpense is returned when a user tries to edit or delete
	// an expense that was generated by marking a payment paid. Such
	// expenses are only removable by unmarking the payment.
	ErrLinkedExpense = errors.New("expense is linked to a payment; unmark the payment instead")

	// ErrUnknownProject is returned when a task references a project
	// that is not in the projects collection.
	ErrUnknownProject = errors.New("task references an unknown project")

	// ErrUnknownHabit is returned when an entry toggle references a
	// habit that is not in the habits collection.
	ErrUnknownHabit = errors.New("unknown habit")
)
