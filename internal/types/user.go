package types

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization level stored on a user record.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User represents the stored user entity.
type User struct {
	ID          uuid.UUID  `json:"id" example:"d290f1ee-6c54-4b01-90e6-d701748f0851"` // Store-assigned identifier.
	Nickname    string     `json:"nickname" example:"johndoe"`                        // Unique, immutable after creation.
	FirstName   string     `json:"firstName" example:"John"`
	LastName    string     `json:"lastName" example:"Doe"`
	Password    string     `json:"-"` // Hex PBKDF2 digest (never exposed).
	Salt        string     `json:"-"`
	Role        Role       `json:"role" example:"user"`
	Rating      int        `json:"rating" example:"0"`
	LastVotedAt *time.Time `json:"lastVotedAt"` // When this user last cast a vote.
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at"`
}

// IsDeleted reports whether the record has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// UserProfile is the public view of a user.
type UserProfile struct {
	Nickname  string `json:"nickname" example:"johndoe"`
	FirstName string `json:"firstName" example:"John"`
	LastName  string `json:"lastName" example:"Doe"`
	Role      Role   `json:"role" example:"user"`
	Rating    int    `json:"rating" example:"3"`
}

// NewUserProfile strips credentials and soft-delete metadata from u.
func NewUserProfile(u *User) UserProfile {
	return UserProfile{
		Nickname:  u.Nickname,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Rating:    u.Rating,
	}
}

// RegisterUserParams is the request body of POST /users.
type RegisterUserParams struct {
	Nickname  string `json:"nickname" example:"johndoe"`
	FirstName string `json:"firstName" example:"John"`
	LastName  string `json:"lastName" example:"Doe"`
	Password  string `json:"password" example:"Str0ngP@ss!"`
	Role      Role   `json:"role" example:"user"`
}

// UpdateUserParams defines the fields allowed for profile updates.
// Use pointers for optional fields, allowing partial updates.
type UpdateUserParams struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Role      *Role   `json:"role,omitempty"`
	Password  *string `json:"password,omitempty"`
}

// Empty reports whether no field was supplied.
func (p UpdateUserParams) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Role == nil && p.Password == nil
}

// UserChanges is the persisted form of an update; the password is already hashed.
type UserChanges struct {
	FirstName *string
	LastName  *string
	Role      *Role
	Password  *string
	Salt      *string
	UpdatedAt time.Time
}

// VoteRequest is the request body of POST /users/vote.
type VoteRequest struct {
	UserID string `json:"userId" example:"d290f1ee-6c54-4b01-90e6-d701748f0851"` // The user being voted for.
	Vote   *int   `json:"vote" example:"1"`                                      // +1 or -1.
}

// VoteRecord is what the store applies when a vote is accepted.
type VoteRecord struct {
	VoterID uuid.UUID
	VoteeID uuid.UUID
	Value   int
	VotedAt time.Time
	// NotAfter is the latest previous vote time that still allows this vote.
	NotAfter time.Time
}

// Response represents a generic API response for success or error messages.
type Response struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty" example:"Vote recorded successfully."`
	Error   string `json:"error,omitempty" example:"User not found"`
}
