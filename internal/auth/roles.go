package auth

import (
	"strings"

	"github.com/vaahan-portal/violation-portal/internal/domain"
)

// RoleResolver derives the single active role from decoded claims.
type RoleResolver struct {
	rank map[domain.Role]int
}

// NewRoleResolver builds a resolver. With no precedence the first ROLE_
// authority in list order wins; otherwise the highest ranked role present
// wins and roles missing from the precedence list are ignored.
func NewRoleResolver(precedence ...domain.Role) *RoleResolver {
	if len(precedence) == 0 {
		return &RoleResolver{}
	}
	rank := make(map[domain.Role]int, len(precedence))
	for i, role := range precedence {
		if _, seen := rank[role]; !seen {
			rank[role] = i
		}
	}
	return &RoleResolver{rank: rank}
}

// ParsePrecedence turns a comma separated list such as "ADMIN,REVIEWER"
// into roles, skipping unknown names.
func ParsePrecedence(list string) []domain.Role {
	var roles []domain.Role
	for _, name := range strings.Split(list, ",") {
		if role, ok := domain.ParseRole(strings.ToUpper(name)); ok {
			roles = append(roles, role)
		}
	}
	return roles
}

// Resolve returns the role for claims, defaulting to USER.
func (r *RoleResolver) Resolve(claims *Claims) domain.Role {
	if claims == nil || len(claims.Authorities) == 0 {
		return domain.RoleUser
	}
	if len(r.rank) == 0 {
		return r.firstMatch(claims.Authorities)
	}
	return r.ranked(claims.Authorities)
}

func (r *RoleResolver) firstMatch(authorities []Authority) domain.Role {
	for _, authority := range authorities {
		name, ok := strings.CutPrefix(string(authority), domain.AuthorityPrefix)
		if !ok {
			continue
		}
		if role, known := domain.ParseRole(name); known {
			return role
		}
		return domain.RoleUser
	}
	return domain.RoleUser
}

func (r *RoleResolver) ranked(authorities []Authority) domain.Role {
	best := domain.RoleUser
	bestRank := -1
	for _, authority := range authorities {
		name, ok := strings.CutPrefix(string(authority), domain.AuthorityPrefix)
		if !ok {
			continue
		}
		role, known := domain.ParseRole(name)
		if !known {
			continue
		}
		rank, listed := r.rank[role]
		if !listed {
			continue
		}
		if bestRank == -1 || rank < bestRank {
			best, bestRank = role, rank
		}
	}
	return best
}
