// Package queue defines message payloads exchanged over the message broker
// and the publisher and consumer that move them.
package queue

// Queue names. Both are declared durable.
const (
    ContactQueue = "contact.submitted"
    AccountQueue = "account.events"
)

// ContactSubmittedEvent is published after a portal contact message has been
// stored.
type ContactSubmittedEvent struct {
    EventID   string `json:"event_id"`
    MessageID uint64 `json:"message_id"`
    Name      string `json:"name"`
    Email     string `json:"email"`
    Subject   string `json:"subject"`
    Message   string `json:"message"`
    CreatedAt string `json:"created_at"`
}

// AccountEventKind names an account lifecycle transition.
type AccountEventKind string

const (
    AccountRegistered    AccountEventKind = "account.registered"
    AccountLoggedIn      AccountEventKind = "account.logged_in"
    AccountLoggedOut     AccountEventKind = "account.logged_out"
    AccountStatusChanged AccountEventKind = "account.status_changed"
)

// AccountEvent is the typed payload passed to in-process subscribers and
// published to AccountQueue for auditing.
type AccountEvent struct {
    EventID  string           `json:"event_id"`
    Kind     AccountEventKind `json:"kind"`
    UserID   uint64           `json:"user_id"`
    Username string           `json:"username,omitempty"`
    Role     string           `json:"role,omitempty"`
    Status   string           `json:"status,omitempty"`
    Remember bool             `json:"remember,omitempty"`
    At       string           `json:"at"`
}
