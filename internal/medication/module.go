package medication

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(db *gorm.DB) Repository {
					return NewRepository(db)
				},
			),
			NewService,
			NewHandler,
		),
	)
}
