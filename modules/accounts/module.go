package accounts

import (
	corepersistence "github.com/iota-uz/mailstock/modules/core/infrastructure/persistence"

	"github.com/iota-uz/mailstock/modules/accounts/infrastructure/persistence"
	"github.com/iota-uz/mailstock/modules/accounts/presentation/controllers"
	"github.com/iota-uz/mailstock/modules/accounts/services"
	"github.com/iota-uz/mailstock/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	recordRepo := persistence.NewRecordRepository()
	fileRepo := persistence.NewSourceFileRepository()
	teamRepo := corepersistence.NewTeamRepository()
	userRepo := corepersistence.NewUserRepository()

	app.RegisterServices(
		services.NewImportService(recordRepo, fileRepo, app.EventPublisher()),
		services.NewPropagationService(recordRepo, teamRepo, userRepo, app.EventPublisher()),
		services.NewRecordsService(recordRepo, fileRepo),
		services.NewExportService(recordRepo),
	)
	services.NewActivityLogger(app.Logger()).Register(app.EventPublisher())

	app.RegisterControllers(
		controllers.NewAdminController(app),
		controllers.NewTeamController(app),
		controllers.NewLeadController(app),
		controllers.NewClosedController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "accounts"
}
