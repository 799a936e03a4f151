package models

// PrincipalKind distinguishes the two identity populations that can hold a
// dashboard session.
type PrincipalKind string

const (
	PrincipalEmployee PrincipalKind = "employee"
	PrincipalUser     PrincipalKind = "user"
)

// Principal is a resolved identity attached to an authenticated request.
type Principal struct {
	ID   int           `json:"id"`
	Kind PrincipalKind `json:"kind"`
	Name string        `json:"name"`
}
