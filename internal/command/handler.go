// Package command — реестр обработчиков команд приложения. Обработчик
// регистрирует себя в init(), поэтому новая команда не требует правок
// main.go: достаточно блочного импорта её пакета.
package command

import (
	"context"

	"github.com/Kargones/issue2md/internal/config"
)

// Handler — обработчик одной команды CLI.
type Handler interface {
	// Name — имя команды в реестре. Совпадает с константой Act*
	// из internal/constants ("sync", "comment").
	Name() string

	// Description — строка для списка команд в выводе help.
	Description() string

	// Execute выполняет команду. Параметры берутся из cfg; ошибка
	// возвращается вызывающему и транслируется в код выхода процесса.
	Execute(ctx context.Context, cfg *config.Config) error
}
