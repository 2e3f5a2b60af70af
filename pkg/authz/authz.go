// Package authz evaluates named authorization policies against a principal.
//
//	opts := authz.NewOptions()
//	opts.AddPolicy("ManageStore", authz.NewPolicyBuilder().RequireClaim("ManageStore", "Allowed").Build())
//	switch authz.New(opts).Authorize(principal, "ManageStore") {
//	case authz.Challenge: // redirect to login
//	case authz.Forbid:    // redirect to access denied
//	}
package authz

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrymomot/musicstore/pkg/identity"
)

var ErrPolicyNotFound = errors.New("authz: policy not found")

// Requirement is a single condition a principal must meet.
type Requirement interface {
	Satisfied(p *identity.Principal) bool
}

// RequirementFunc adapts a function to Requirement.
type RequirementFunc func(p *identity.Principal) bool

func (f RequirementFunc) Satisfied(p *identity.Principal) bool { return f(p) }

// ClaimsRequirement demands a claim of Type. When AllowedValues is not
// empty the claim value must be one of them.
type ClaimsRequirement struct {
	Type          string
	AllowedValues []string
}

func (r ClaimsRequirement) Satisfied(p *identity.Principal) bool {
	for _, c := range p.FindAll(r.Type) {
		if len(r.AllowedValues) == 0 || slices.Contains(r.AllowedValues, c.Value) {
			return true
		}
	}
	return false
}

// AuthenticatedRequirement demands an authenticated principal.
type AuthenticatedRequirement struct{}

func (AuthenticatedRequirement) Satisfied(p *identity.Principal) bool { return p.IsAuthenticated() }

// RolesRequirement demands membership in any of Roles.
type RolesRequirement struct {
	Roles []string
}

func (r RolesRequirement) Satisfied(p *identity.Principal) bool {
	return slices.ContainsFunc(r.Roles, p.IsInRole)
}

// Policy is a set of requirements that must all hold.
type Policy struct {
	Requirements []Requirement
}

// PolicyBuilder composes a Policy.
type PolicyBuilder struct {
	reqs []Requirement
}

func NewPolicyBuilder() *PolicyBuilder { return &PolicyBuilder{} }

// RequireClaim adds a ClaimsRequirement.
func (b *PolicyBuilder) RequireClaim(claimType string, allowed ...string) *PolicyBuilder {
	return b.Require(ClaimsRequirement{Type: claimType, AllowedValues: allowed})
}

func (b *PolicyBuilder) RequireRole(roles ...string) *PolicyBuilder {
	return b.Require(RolesRequirement{Roles: roles})
}

func (b *PolicyBuilder) RequireAuthenticatedUser() *PolicyBuilder {
	return b.Require(AuthenticatedRequirement{})
}

func (b *PolicyBuilder) Require(r Requirement) *PolicyBuilder {
	b.reqs = append(b.reqs, r)
	return b
}

func (b *PolicyBuilder) Build() Policy {
	return Policy{Requirements: slices.Clone(b.reqs)}
}

// Options holds named policies.
type Options struct {
	mu       sync.RWMutex
	policies map[string]Policy
}

func NewOptions() *Options {
	return &Options{policies: make(map[string]Policy)}
}

// AddPolicy registers or replaces a policy.
func (o *Options) AddPolicy(name string, p Policy) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.policies[name] = p
}

// Policy returns the named policy.
func (o *Options) Policy(name string) (Policy, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	p, ok := o.policies[name]
	return p, ok
}

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Allowed means every requirement holds.
	Allowed Decision = iota
	// Challenge means the caller is anonymous and should authenticate.
	Challenge
	// Forbid means the caller is authenticated but lacks permission.
	Forbid
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "Allowed"
	case Challenge:
		return "Challenge"
	default:
		return "Forbid"
	}
}

// Authorizer evaluates policies.
type Authorizer struct {
	opts *Options
}

func New(opts *Options) *Authorizer {
	return &Authorizer{opts: opts}
}

// Authorize evaluates the named policy. An unknown policy denies access.
func (a *Authorizer) Authorize(p *identity.Principal, policy string) (Decision, error) {
	pol, ok := a.opts.Policy(policy)
	if !ok {
		return Forbid, fmt.Errorf("%w: %q", ErrPolicyNotFound, policy)
	}
	return Evaluate(p, pol), nil
}

// Evaluate checks p against pol.
func Evaluate(p *identity.Principal, pol Policy) Decision {
	for _, r := range pol.Requirements {
		if !r.Satisfied(p) {
			if !p.IsAuthenticated() {
				return Challenge
			}
			return Forbid
		}
	}
	return Allowed
}
