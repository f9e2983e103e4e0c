package model

// Role is the caller role asserted by the identity provider.
type Role string

const (
    RoleStudent Role = "STUDENT"
    RoleStaff   Role = "STAFF"
    RoleAdmin   Role = "ADMIN"
)

// Student is an authenticated student as supplied by the identity provider.
type Student struct {
    ID     string
    Gender Gender
}

// Caller is whoever issued the current request.  Gender is only meaningful
// for students.
type Caller struct {
    ID     string
    Role   Role
    Gender Gender
}

// Student narrows the caller to a Student value.
func (c Caller) Student() Student {
    return Student{ID: c.ID, Gender: c.Gender}
}

// IsAdmin reports whether the caller has administrative rights.
func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }
