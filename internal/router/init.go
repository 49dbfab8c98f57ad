package router

import (
	"github.com/oksasatya/maisrole-api/internal/application"
	"github.com/oksasatya/maisrole-api/internal/container"
	"github.com/oksasatya/maisrole-api/internal/infrastructure/messaging"
	pginfra "github.com/oksasatya/maisrole-api/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/maisrole-api/internal/interface/http"
	"github.com/oksasatya/maisrole-api/internal/router/modules"
)

// AccountDeps holds the services shared by the HTTP modules and the CLI.
type AccountDeps struct {
	Users   *application.UserService
	Hosts   *application.HostService
	Reviews *application.ReviewService
	Auth    *application.Authenticator
}

// BuildAccountDeps wires repositories and services from the container.
func BuildAccountDeps() AccountDeps {
	logger := container.GetLogger()
	hasher := container.GetHasher()

	store := pginfra.NewStore(container.GetPGPool())
	users := pginfra.NewUserRepository(store)
	hosts := pginfra.NewHostRepository(store)
	reviews := pginfra.NewReviewRepository(store)
	creds := application.NewCredentialStore(users, hosts)

	var events application.EventPublisher = application.NopPublisher{}
	if pub := container.GetRabbitPub(); pub != nil {
		cfg := container.GetConfig()
		events = messaging.NewAccountNotifier(pub, messaging.Branding{
			CompanyName: cfg.CompanyName,
			AppBaseURL:  cfg.AppBaseURL,
			SupportURL:  cfg.SupportURL,
		})
	}

	return AccountDeps{
		Users:   application.NewUserService(store, users, reviews, creds, hasher, events, logger),
		Hosts:   application.NewHostService(store, hosts, creds, hasher, events, logger),
		Reviews: application.NewReviewService(store, reviews, users),
		Auth:    application.NewAuthenticator(users, hosts, hasher, logger),
	}
}

// InitModules builds all feature modules and registers them with r.
// Call once during startup, after the container is populated.
func InitModules(r *Registry) {
	deps := BuildAccountDeps()
	jwt := container.GetJWT()
	cookies := container.GetCookies()
	limits := container.RateStore()

	reviewHandler := handlers.NewReviewHandler(deps.Reviews)
	r.Add(modules.NewUserModule(handlers.NewUserHandler(deps.Users, deps.Auth, jwt, cookies), reviewHandler, limits))
	r.Add(modules.NewReviewModule(reviewHandler))
	r.Add(modules.NewHostModule(handlers.NewHostHandler(deps.Hosts, deps.Auth, jwt, cookies), limits))

	if cfg := container.GetConfig(); cfg == nil || cfg.MetricsEnabled {
		r.Add(modules.NewMetricsModule(limits))
	}
}
