package refill

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/elskow/medtrack/internal/medication"
)

func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(db *gorm.DB) Repository {
					return NewRepository(db)
				},
			),
			fx.Annotate(
				func(repo Repository, medications *medication.Service, log *zap.Logger) *Service {
					return NewService(repo, medications, log)
				},
			),
			NewHandler,
		),
	)
}
