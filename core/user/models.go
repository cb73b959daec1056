package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aulaproject/aula/core"
)

// Roles
const (
	RoleAdmin   = "admin:"
	RoleTeacher = "teacher:"
	RoleStudent = "student:"
)

var Roles = []Role{
	{Name: "Student", Value: RoleStudent},
	{Name: "Teacher", Value: RoleTeacher},
	{Name: "Admin", Value: RoleAdmin},
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// HasUsableCredential reports whether a password has ever been set.
// Students created by CSV ingestion start without one.
func (u *User) HasUsableCredential() bool { return len(u.PasswordHash) > 0 }

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool   { return u.RoleStartsWith(RoleAdmin) }
func (u *User) IsTeacher() bool { return u.RoleStartsWith(RoleTeacher) }
func (u *User) IsStudent() bool { return u.RoleStartsWith(RoleStudent) }

// ApplyNames overwrites the stored names with the provided ones when they are
// non-empty and differ. It reports whether anything changed.
func (u *User) ApplyNames(firstName, lastName string) bool {
	var changed bool
	if firstName != "" && u.FirstName != firstName {
		u.FirstName = firstName
		changed = true
	}
	if lastName != "" && u.LastName != lastName {
		u.LastName = lastName
		changed = true
	}
	return changed
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	FirstName string   `json:"first_name" validate:"required"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password"`
	Roles     []string `json:"roles"`
}

func (nu *NewUser) Validate() error {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return core.Validate.Struct(nu)
}
