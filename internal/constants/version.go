package constants

// Значения переопределяются при сборке:
//
//	go build -ldflags "-X github.com/Kargones/issue2md/internal/constants.Version=... \
//	  -X github.com/Kargones/issue2md/internal/constants.PreCommitHash=..."
var (
	// Version - версия приложения
	Version = "0.1.0-dev"
	// PreCommitHash - хеш коммита, на котором собрано приложение
	PreCommitHash = "unknown"
)
