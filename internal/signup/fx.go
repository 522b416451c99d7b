package signup

import (
	"github.com/smallbiznis/telematch/internal/navigation"
	"github.com/smallbiznis/telematch/internal/session"
	"github.com/smallbiznis/telematch/internal/signup/client"
	"github.com/smallbiznis/telematch/internal/signup/controller"
	"github.com/smallbiznis/telematch/internal/signup/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("signup",
	fx.Provide(client.NewFromConfig),
	fx.Provide(provideSessionStore),
	fx.Provide(provideNavigator),
	fx.Provide(controller.New),
)

func provideSessionStore(store session.Store) domain.SessionStore {
	return store
}

func provideNavigator(router *navigation.Router) domain.Navigator {
	return router
}
