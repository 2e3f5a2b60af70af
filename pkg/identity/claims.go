package identity

import "context"

// Claim types issued by this package.
const (
	ClaimNameIdentifier = "nameidentifier"
	ClaimName           = "name"
	ClaimEmail          = "email"
	ClaimRole           = "role"
	ClaimSecurityStamp  = "security_stamp"
	ClaimLoginProvider  = "login_provider"
)

// Claim is a typed statement about a subject.
type Claim struct {
	Type   string `json:"t"`
	Value  string `json:"v"`
	Issuer string `json:"i,omitempty"`
}

// Principal is an authenticated identity and its claims.
type Principal struct {
	AuthenticationType string  `json:"auth"`
	Claims             []Claim `json:"claims"`
}

// NewPrincipal creates a principal. An empty authenticationType produces an
// anonymous principal.
func NewPrincipal(authenticationType string, claims ...Claim) *Principal {
	return &Principal{AuthenticationType: authenticationType, Claims: claims}
}

// IsAuthenticated reports whether the principal was issued by a scheme.
func (p *Principal) IsAuthenticated() bool {
	return p != nil && p.AuthenticationType != ""
}

// FindFirst returns the first claim of the given type.
func (p *Principal) FindFirst(claimType string) (Claim, bool) {
	if p == nil {
		return Claim{}, false
	}
	for _, c := range p.Claims {
		if c.Type == claimType {
			return c, true
		}
	}
	return Claim{}, false
}

// FindAll returns every claim of the given type.
func (p *Principal) FindAll(claimType string) []Claim {
	if p == nil {
		return nil
	}
	var out []Claim
	for _, c := range p.Claims {
		if c.Type == claimType {
			out = append(out, c)
		}
	}
	return out
}

// HasClaim reports whether a claim with the exact type and value exists.
func (p *Principal) HasClaim(claimType, value string) bool {
	for _, c := range p.FindAll(claimType) {
		if c.Value == value {
			return true
		}
	}
	return false
}

// AddClaim appends claims.
func (p *Principal) AddClaim(claims ...Claim) {
	p.Claims = append(p.Claims, claims...)
}

// ID returns the name identifier claim.
func (p *Principal) ID() string {
	c, _ := p.FindFirst(ClaimNameIdentifier)
	return c.Value
}

// Name returns the name claim.
func (p *Principal) Name() string {
	c, _ := p.FindFirst(ClaimName)
	return c.Value
}

// IsInRole reports whether the principal carries the role claim.
func (p *Principal) IsInRole(role string) bool {
	return p.HasClaim(ClaimRole, role)
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored in ctx, or an anonymous
// principal.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey{}).(*Principal); ok && p != nil {
		return p
	}
	return NewPrincipal("")
}
