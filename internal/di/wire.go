//go:build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/Kargones/issue2md/internal/config"
)

//go:generate wire

// ProviderSet — полный граф зависимостей приложения. Новый провайдер
// объявляется в providers.go, добавляется сюда, затем wire_gen.go
// перегенерируется через go generate ./internal/di/...
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideOutputWriter,
	ProvideTraceID,
	ProvideGiteaAPI,
	ProvideMetricsCollector,
	ProvideTracerProvider,
	wire.Struct(new(App), "*"),
)

// InitializeApp собирает App вокруг уже загруженного Config
// (см. config.MustLoad). Тело подменяется сгенерированным кодом
// в wire_gen.go; сама функция под тегом wireinject не компилируется.
func InitializeApp(cfg *config.Config) (*App, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
