package config

import (
	"github.com/spf13/pflag"
	"go.uber.org/fx"
)

// Module provides Config, applying overrides from fs when it is not nil.
func Module(fs *pflag.FlagSet) fx.Option {
	return fx.Module("config",
		fx.Provide(func() (Config, error) {
			return LoadWithFlags(fs)
		}),
	)
}
