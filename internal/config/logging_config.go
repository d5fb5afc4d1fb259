package config

import (
	"fmt"
	"log/slog"

	"github.com/Kargones/issue2md/internal/pkg/logging"

	"github.com/ilyakaznacheev/cleanenv"
)

// LoggingConfig — секция настроек логирования в файле конфигурации.
type LoggingConfig struct {
	// Level — минимальный уровень записи: debug, info, warn, error.
	Level string `json:"level" yaml:"level" env:"I2M_LOG_LEVEL" env-default:"info"`

	// Format — json либо text.
	Format string `json:"format" yaml:"format" env:"I2M_LOG_FORMAT" env-default:"text"`

	// Output — stderr либо file.
	Output string `json:"output" yaml:"output" env:"I2M_LOG_OUTPUT" env-default:"stderr"`

	// FilePath — путь файла логов при output=file.
	FilePath string `json:"file_path" yaml:"file_path" env:"I2M_LOG_FILE_PATH"`

	// Параметры ротации lumberjack, действуют при output=file.
	MaxSize    int `json:"max_size_mb" yaml:"max_size_mb" env:"I2M_LOG_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int `json:"max_backups" yaml:"max_backups" env:"I2M_LOG_MAX_BACKUPS" env-default:"3"`
	MaxAge     int `json:"max_age_days" yaml:"max_age_days" env:"I2M_LOG_MAX_AGE_DAYS" env-default:"7"`

	// Compress включает gzip для ротированных файлов.
	// env-default:"true" перезаписывает compress=false из файла при
	// cleanenv.ReadEnv; явно отключить сжатие можно только через
	// I2M_LOG_COMPRESS=false.
	Compress bool `json:"compress" yaml:"compress" env:"I2M_LOG_COMPRESS" env-default:"true"`
}

// hasLoggingSection определяет, заполнял ли оператор секцию logging.
func hasLoggingSection(s *LoggingConfig) bool {
	return s != nil && (s.Level != "" || s.Format != "" || s.Output != "" || s.FilePath != "")
}

// defaultLoggingConfig — дефолты пакета logging в форме секции файла.
func defaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:      logging.DefaultLevel,
		Format:     logging.DefaultFormat,
		Output:     logging.DefaultOutput,
		FilePath:   logging.DefaultFilePath,
		MaxSize:    logging.DefaultMaxSize,
		MaxBackups: logging.DefaultMaxBackups,
		MaxAge:     logging.DefaultMaxAge,
		Compress:   logging.DefaultCompress,
	}
}

// validateLoggingConfig проверяет секцию после загрузки. Пустые значения
// допустимы: их заполнят env-default теги.
func validateLoggingConfig(c *LoggingConfig) error {
	switch c.Level {
	case "", logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("logging: неизвестный уровень %q (debug, info, warn, error)", c.Level)
	}
	switch c.Format {
	case "", logging.FormatJSON, logging.FormatText:
	default:
		return fmt.Errorf("logging: неизвестный формат %q (json, text)", c.Format)
	}
	switch c.Output {
	case "", logging.OutputStderr, logging.OutputFile:
	default:
		return fmt.Errorf("logging: неизвестный вывод %q (stderr, file)", c.Output)
	}
	if c.Output == logging.OutputFile && c.FilePath == "" {
		return fmt.Errorf("logging: при output=file требуется file_path")
	}
	return nil
}

// loadLoggingConfig выбирает источник секции (файл конфигурации либо
// дефолты) и применяет поверх него переменные окружения I2M_LOG_*.
func loadLoggingConfig(cfg *Config, l *slog.Logger) (*LoggingConfig, error) {
	section := defaultLoggingConfig()
	source := "defaults"
	if cfg.FileConfig != nil && hasLoggingSection(&cfg.FileConfig.Logging) {
		section = &cfg.FileConfig.Logging
		source = "file"
	}

	if err := cleanenv.ReadEnv(section); err != nil {
		l.Warn("logging: не удалось применить переменные окружения",
			slog.String("error", err.Error()),
		)
	}

	l.Debug("конфигурация логирования загружена",
		slog.String("source", source),
		slog.String("level", section.Level),
		slog.String("format", section.Format),
	)
	return section, nil
}
