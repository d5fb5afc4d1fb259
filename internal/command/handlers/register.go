// Package handlers подключает все обработчики команд приложения.
// Импорт этого пакета регистрирует обработчики в глобальном реестре
// через их init-функции.
package handlers

import (
	_ "github.com/Kargones/issue2md/internal/command/handlers/actionhandler"
	_ "github.com/Kargones/issue2md/internal/command/handlers/help"
	_ "github.com/Kargones/issue2md/internal/command/handlers/synchandler"
	_ "github.com/Kargones/issue2md/internal/command/handlers/version"
)
