package modules

import (
	"github.com/iota-uz/mailstock/modules/accounts"
	"github.com/iota-uz/mailstock/modules/core"
	"github.com/iota-uz/mailstock/pkg/application"
)

// BuiltInModules in registration order; core must come first so its
// services are available to the rest.
var BuiltInModules = []application.Module{
	core.NewModule(),
	accounts.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range append(BuiltInModules, externalModules...) {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
