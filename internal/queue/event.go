// Package queue defines message payloads exchanged over the message broker.
package queue

const NotifyQueueName = "coordination.notify"

// IntentMessage is the broker payload carrying one notification intent.  It
// holds everything a downstream notifier needs to address the recipients
// without querying the primary database.
type IntentMessage struct {
    ID          string   `json:"id"`
    Type        string   `json:"type"`
    SubjectKind string   `json:"subject_kind"`
    SubjectID   uint64   `json:"subject_id"`
    Recipients  []uint64 `json:"recipients"`
    OccurredAt  string   `json:"occurred_at"`
}
