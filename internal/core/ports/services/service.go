package services

// ServiceContainer holds instances of all the application services.
// Handlers receive it when routes are registered.
type ServiceContainer struct {
	Session SessionSvcFacade
	User    UserSvcFacade
	Token   TokenSvcFacade
}
