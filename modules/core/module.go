package core

import (
	"github.com/iota-uz/mailstock/modules/core/infrastructure/persistence"
	"github.com/iota-uz/mailstock/modules/core/presentation/controllers"
	"github.com/iota-uz/mailstock/modules/core/services"
	"github.com/iota-uz/mailstock/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	userRepo := persistence.NewUserRepository()
	teamRepo := persistence.NewTeamRepository()
	sessionRepo := persistence.NewSessionRepository()

	app.RegisterServices(
		services.NewUsersService(userRepo, teamRepo),
		services.NewTeamsService(teamRepo),
		services.NewAuthService(userRepo, sessionRepo),
	)
	app.RegisterControllers(
		controllers.NewAuthController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "core"
}
