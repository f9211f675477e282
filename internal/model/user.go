package model

import "time"

// User represents an account record as stored in the `users` table joined
// with its role and status rows. RoleName, StatusLabel and OnlineLabel are
// populated by repository reads; writes only use the *ID columns.
//
// Fields:
//  ID             – primary key identifier of the user.
//  Name           – display name.
//  Username       – unique login name.
//  Email          – unique email address.
//  PasswordHash   – bcrypt hashed password.
//  RoleID         – foreign key into roles.
//  StatusID       – foreign key into statuses (type ACCOUNT).
//  OnlineStatusID – foreign key into statuses (type ONLINE); nil when unset.
type User struct {
    ID             uint64    // users.id
    Name           string    // users.name
    Username       string    // users.username
    Email          string    // users.email
    PasswordHash   string    // users.password_hash
    RoleID         uint8     // users.role_id
    StatusID       uint16    // users.status_id
    OnlineStatusID *uint16   // users.online_status_id (nullable)
    CreatedAt      time.Time // users.created_at
    UpdatedAt      time.Time // users.updated_at

    RoleName    string // roles.name
    StatusLabel string // statuses.status for status_id
    OnlineLabel string // statuses.status for online_status_id, "" when unset
}

// OnlineDisplay returns the presence label shown to clients. A missing
// online status reads as OFFLINE.
func (u User) OnlineDisplay() string {
    if u.OnlineLabel == "" {
        return OnlineOffline
    }
    return u.OnlineLabel
}

// Role represents a row in the `roles` table. The set of names is closed and
// seeded by the schema.
type Role struct {
    ID   uint8  // roles.id
    Name string // roles.name
}

// Seeded role names.
const (
    RoleAdmin            = "Admin"
    RoleTourismOfficer   = "Tourism Officer"
    RoleLGUOfficer       = "LGU Officer"
    RoleExternalOperator = "External Operator"
    RoleTourismStaff     = "Tourism Staff"
    RoleTourist          = "Tourist"
)

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA‑256 hash of the token value is stored. Remember marks a long-lived
// "remember me" token.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    Remember  bool       // refresh_tokens.remember
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
