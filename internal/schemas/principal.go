package schemas

// PrincipalKind tags the authentication variant resolved for a request.
type PrincipalKind int

const (
	// PrincipalAnonymous means no usable Authorization header was presented.
	PrincipalAnonymous PrincipalKind = iota
	// PrincipalBearer means a live session token resolved to a user.
	PrincipalBearer
	// PrincipalBasic means basic credentials were presented but not yet verified.
	PrincipalBasic
)

// Principal is the per-request authentication result attached by the auth
// middleware. It is resolved exactly once; routes pattern-match on the kind
// they accept. For PrincipalBasic the credentials are only decoded, the
// owning route performs the lookup, password and ownership checks.
type Principal struct {
	Kind     PrincipalKind
	User     *User  // set for PrincipalBearer
	Email    string // set for PrincipalBasic
	Password string // set for PrincipalBasic
}

// IsBearer reports whether the request carries an authenticated user.
func (p *Principal) IsBearer() bool {
	return p != nil && p.Kind == PrincipalBearer && p.User != nil
}

// IsBasic reports whether the request carries unverified basic credentials.
func (p *Principal) IsBasic() bool {
	return p != nil && p.Kind == PrincipalBasic
}
