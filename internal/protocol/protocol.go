// Package protocol describes the hub's event vocabulary and decodes its
// payloads into typed events.
package protocol

import (
	"errors"
	"fmt"

	"github.com/atomicstack/camview/internal/state"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrUnexpectedPayload is returned when a payload does not have the shape its
// event requires.
var ErrUnexpectedPayload = errors.New("protocol: unexpected payload")

// Inbound event names.
const (
	EventSnapshot        = "picture"
	EventSourceConnected = "cam_connected"
	EventSourceLeft      = "cam_disconnected"
	EventMessageSent     = "message_sent"
)

// Outbound event names.
const (
	EventSendMessage = "send_message"
)

// Event is a decoded inbound event.
type Event interface {
	EventName() string
}

// Snapshot is the complete set of known sources in hub order.
type Snapshot struct {
	Sources []state.Source
	// Skipped counts entries that were not objects and were ignored.
	Skipped int
}

func (Snapshot) EventName() string { return EventSnapshot }

// Churn is the payload of cam_connected and cam_disconnected.
type Churn struct {
	ID   string `json:"cam_id"`
	Name string `json:"cam_name"`
}

// SourceJoined reports that a camera host connected to the hub.
type SourceJoined struct{ Churn }

func (SourceJoined) EventName() string { return EventSourceConnected }

// SourceLeft reports that a camera host disconnected from the hub.
type SourceLeft struct{ Churn }

func (SourceLeft) EventName() string { return EventSourceLeft }

// MessageSent is the hub's echo after it forwarded a message.
type MessageSent struct{}

func (MessageSent) EventName() string { return EventMessageSent }

// SendMessage is the payload of send_message.
type SendMessage struct {
	Message string `json:"message"`
	SID     string `json:"sid"`
}

type sourceEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Decode turns a named event and its first argument into a typed event. It
// reports false for events this client does not consume.
func Decode(name string, payload []byte) (Event, bool, error) {
	switch name {
	case EventSnapshot:
		snap, err := DecodeSnapshot(payload)
		if err != nil {
			return nil, true, err
		}
		return snap, true, nil
	case EventSourceConnected:
		churn, err := decodeChurn(payload)
		if err != nil {
			return nil, true, err
		}
		return SourceJoined{churn}, true, nil
	case EventSourceLeft:
		churn, err := decodeChurn(payload)
		if err != nil {
			return nil, true, err
		}
		return SourceLeft{churn}, true, nil
	case EventMessageSent:
		return MessageSent{}, true, nil
	default:
		return nil, false, nil
	}
}

// DecodeSnapshot parses the id → source object, preserving key order. Entries
// that are not objects are skipped; an entry without an id takes its key.
func DecodeSnapshot(payload []byte) (Snapshot, error) {
	iter := jsoniter.ParseBytes(json, payload)
	if next := iter.WhatIsNext(); next != jsoniter.ObjectValue {
		return Snapshot{}, fmt.Errorf("%w: snapshot is not an object", ErrUnexpectedPayload)
	}
	var snap Snapshot
	iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		if it.WhatIsNext() != jsoniter.ObjectValue {
			it.Skip()
			snap.Skipped++
			return true
		}
		var entry sourceEntry
		it.ReadVal(&entry)
		if it.Error != nil {
			return false
		}
		if entry.ID == "" {
			entry.ID = key
		}
		snap.Sources = append(snap.Sources, state.Source{ID: entry.ID, Name: entry.Name, Picture: entry.Picture})
		return true
	})
	if iter.Error != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", iter.Error)
	}
	return snap, nil
}

func decodeChurn(payload []byte) (Churn, error) {
	var churn Churn
	if err := json.Unmarshal(payload, &churn); err != nil {
		return Churn{}, fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
	}
	return churn, nil
}

// JoinedNotice is the notice text raised for cam_connected.
func JoinedNotice(name string) string {
	return fmt.Sprintf("New source connected: %s", name)
}

// LeftNotice is the notice text raised for cam_disconnected.
func LeftNotice(name string) string {
	return fmt.Sprintf("Source disconnected: %s", name)
}
