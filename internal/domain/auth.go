package domain

// PrincipalClass differentiates user vs admin identities and tokens.
type PrincipalClass string

const (
	PrincipalUser  PrincipalClass = "user"
	PrincipalAdmin PrincipalClass = "admin"
)

// Valid reports whether the class is one of the known principal classes.
func (c PrincipalClass) Valid() bool {
	return c == PrincipalUser || c == PrincipalAdmin
}

func (c PrincipalClass) String() string {
	return string(c)
}
