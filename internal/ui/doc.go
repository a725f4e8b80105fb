// Package ui contains the Bubble Tea program that renders the camera hub.
// Model focuses on message orchestration; dedicated helpers own navigation,
// filter input, the compose line, notices and rendering.
//
// Message flow:
//   - Init connects the session manager and starts waiting for transport
//     events. Update routes every tea.Msg through a typed handler registry.
//   - Transport events arrive one at a time through waitForBackendEvent and go
//     to the dispatcher, which updates the source registry and the notice
//     queue. The picker is rebuilt from the registry after every snapshot.
//   - Each queued notice schedules its own expiry tick. ctrl+d dismisses the
//     oldest notice early.
//
// State ownership:
//   - Sources, the selection and the notice queue live in internal/state and
//     are only touched from Update.
//   - The picker level (filter, cursor, viewport) lives in internal/ui/state.
//   - Outbound messages go through session.Sender, which owns the
//     precondition checks and the notice raised when they fail.
package ui
