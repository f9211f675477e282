package model

// StatusType discriminates the two status families sharing the statuses table.
type StatusType string

const (
    StatusTypeAccount StatusType = "ACCOUNT"
    StatusTypeOnline  StatusType = "ONLINE"
)

// Status is a row of `statuses`.
type Status struct {
    ID     uint16     // statuses.id
    Status string     // statuses.status
    Type   StatusType // statuses.type
}

// Account status labels.
const (
    AccountPending  = "Pending"
    AccountBlocked  = "Blocked"
    AccountApproved = "Approved"
    AccountInactive = "Inactive"
)

// Online status labels.
const (
    OnlineOnline  = "ONLINE"
    OnlineOffline = "OFFLINE"
)
