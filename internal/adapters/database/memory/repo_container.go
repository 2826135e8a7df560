package memory

import (
	portsrepo "github.com/SscSPs/user_accounts_service/internal/core/ports/repositories"
)

// NewRepositoryProvider returns a provider backed by fresh in-memory repositories.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo: NewUserRepository(),
	}
}
