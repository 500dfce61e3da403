package user

import "github.com/Charbel-5/moondev-coding-challenge/internal/common"

type Role string

const (
	RoleApplicant Role = "applicant"
	RoleReviewer  Role = "reviewer"
)

// Identity is what the external identity provider vouches for. The service
// trusts it as given and performs no credential verification of its own.
type Identity struct {
	UserID common.UUID
	Role   Role
}

func (i Identity) IsReviewer() bool {
	return i.Role == RoleReviewer
}
