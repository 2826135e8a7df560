package services

import (
	portsrepo "github.com/SscSPs/user_accounts_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/user_accounts_service/internal/core/ports/services"
	"github.com/SscSPs/user_accounts_service/internal/platform/config"
)

// ContainerDeps are the collaborators the services need besides the repositories.
// Media and Events may be nil.
type ContainerDeps struct {
	Validator portssvc.Validator
	Media     portssvc.MediaStore
	Events    portssvc.SessionEventRecorder
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, deps ContainerDeps) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Token = NewTokenService(cfg)

	options := []SessionServiceOption{
		WithRevokeOnPasswordChange(cfg.RevokeSessionsOnPasswordChange),
	}
	if deps.Media != nil {
		options = append(options, WithMediaStore(deps.Media))
	}
	if deps.Events != nil {
		options = append(options, WithSessionEvents(deps.Events))
	}
	container.Session = NewSessionService(
		repos.UserRepo,
		NewPasswordHasher(cfg.BcryptCost),
		container.Token,
		deps.Validator,
		options...,
	)

	container.User = NewUserService(repos.UserRepo, deps.Validator, deps.Media)

	return container
}
