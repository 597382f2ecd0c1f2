package auth

import "strings"

// AdminPolicy decides whether a caller holds the admin capability, which
// grants cross-owner visibility and edit rights.
type AdminPolicy interface {
	IsAdmin(email string) bool
}

type allowListPolicy struct {
	emails map[string]struct{}
}

// NewAllowListPolicy builds the policy from configured admin emails.
// Matching is case-insensitive on the whole address.
func NewAllowListPolicy(emails []string) AdminPolicy {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		set[email] = struct{}{}
	}
	return &allowListPolicy{emails: set}
}

func (p *allowListPolicy) IsAdmin(email string) bool {
	_, ok := p.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}
