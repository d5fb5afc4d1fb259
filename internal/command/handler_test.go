package command

import (
	"context"

	"github.com/Kargones/issue2md/internal/config"
)

// ifaceCheck ловит на компиляции рассинхронизацию с интерфейсом Handler:
// меняется сигнатура — падает сборка тестов.
type ifaceCheck struct{}

func (h *ifaceCheck) Name() string        { return "iface-check" }
func (h *ifaceCheck) Description() string { return "проверка сигнатур Handler" }
func (h *ifaceCheck) Execute(_ context.Context, _ *config.Config) error {
	return nil
}

var _ Handler = (*ifaceCheck)(nil)
