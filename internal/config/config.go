// Package config собирает конфигурацию приложения из трёх источников:
// аргументов CLI, файла конфигурации и переменных окружения I2M_*.
// Приоритет: окружение переопределяет файл, аргументы задают команду.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Kargones/issue2md/internal/constants"
	"github.com/Kargones/issue2md/internal/entity/gitea"
	"github.com/Kargones/issue2md/internal/pkg/apperrors"
	"github.com/Kargones/issue2md/internal/pkg/metrics"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// FileConfig — содержимое файла конфигурации (config.json).
// Файл с расширением .yaml/.yml разбирается как YAML с теми же ключами.
type FileConfig struct {
	// GiteaURL — базовый URL сервера Gitea (например, https://gitea.example.com).
	GiteaURL string `json:"gitea_url" yaml:"gitea_url" env:"I2M_GITEA_URL"`

	// Token — токен доступа к API Gitea.
	Token string `json:"token" yaml:"token" env:"I2M_TOKEN"`

	// VerifySSL — проверять ли TLS-сертификат сервера (по умолчанию false).
	VerifySSL bool `json:"verify_ssl" yaml:"verify_ssl" env:"I2M_VERIFY_SSL" env-default:"false"`

	// Секции вспомогательных подсистем.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
}

// Config — собранная конфигурация запуска.
type Config struct {
	// Command — команда, определённая из аргументов CLI
	// (sync, comment, close, reopen, version, help).
	Command string

	// RepoURL — URL репозитория вида scheme://host/owner/repo.
	RepoURL string

	// TargetFile — путь к целевому markdown-файлу (для sync).
	TargetFile string

	// CompleteFile — путь к файлу выполненных задач (--complete):
	// найденные в нём номера задач исключаются из синхронизации.
	CompleteFile string

	// Actions — действия над задачами, запрошенные флагами CLI,
	// в порядке следования флагов.
	Actions []Action

	// Action — текущее выполняемое действие. Выставляется в main
	// перед диспетчеризацией каждого элемента Actions.
	Action *Action

	// Параметры подключения к Gitea (из файла конфигурации и I2M_*).
	GiteaURL    string
	AccessToken string
	VerifySSL   bool

	// Owner и Repo — производные от RepoURL.
	Owner string
	Repo  string

	// Logger — bootstrap-логгер загрузки конфигурации. Основной логгер
	// приложения собирает di.ProvideLogger уже по LoggingConfig.
	Logger *slog.Logger

	// MetricsCollector — коллектор метрик запуска. Выставляется в main после
	// инициализации провайдеров; nil означает, что метрики не записываются.
	MetricsCollector metrics.Collector

	// FileConfig — разобранный файл конфигурации.
	FileConfig *FileConfig

	// Секции вспомогательных подсистем после применения env и fail-safe
	// валидации.
	LoggingConfig *LoggingConfig
	MetricsConfig *MetricsConfig
	TracingConfig *TracingConfig
}

// CreateGiteaAPI создаёт клиент Gitea API из параметров подключения.
func CreateGiteaAPI(cfg *Config) gitea.APIInterface {
	if cfg == nil {
		return nil
	}
	return gitea.NewGiteaAPI(gitea.Config{
		GiteaURL:    cfg.GiteaURL,
		Owner:       cfg.Owner,
		Repo:        cfg.Repo,
		AccessToken: cfg.AccessToken,
		VerifySSL:   cfg.VerifySSL,
	})
}

// MustLoad собирает конфигурацию запуска: разбирает аргументы CLI, читает
// файл конфигурации (путь в I2M_CONFIG, иначе config.json рядом с бинарём)
// и применяет переменные окружения.
//
// Секции логирования, метрик и трейсинга загружаются fail-safe: ошибка или
// невалидные значения не прерывают запуск — секция откатывается на дефолты
// либо отключается. Подключение к Gitea, напротив, проверяется строго:
// без gitea_url и token команды синхронизации бессмысленны.
func MustLoad(args []string) (*Config, error) {
	parsed, err := parseArgs(args)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrArgsInvalid, err.Error(), err)
	}

	cfg := &Config{
		Command:      parsed.Command,
		RepoURL:      parsed.RepoURL,
		TargetFile:   parsed.TargetFile,
		CompleteFile: parsed.CompleteFile,
		Actions:      parsed.Actions,
	}

	l := getSlog(os.Getenv("I2M_LOG_LEVEL"))
	cfg.Logger = l

	// version и help не требуют ни файла конфигурации, ни подключения к Gitea.
	if cfg.Command == constants.ActVersion || cfg.Command == constants.ActHelp {
		return cfg, nil
	}

	configPath := os.Getenv("I2M_CONFIG")
	if configPath == "" {
		configPath = constants.DefaultConfigFile
	}

	if cfg.FileConfig, err = readConfigFile(configPath); err != nil {
		l.Error("ошибка загрузки файла конфигурации",
			slog.String("config_path", configPath),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	cfg.GiteaURL = cfg.FileConfig.GiteaURL
	cfg.AccessToken = cfg.FileConfig.Token
	cfg.VerifySSL = cfg.FileConfig.VerifySSL

	if err = validateRequiredFields(cfg, l); err != nil {
		return nil, err
	}

	owner, repo, err := gitea.ParseRepoURL(cfg.RepoURL)
	if err != nil {
		l.Error("не удалось разобрать URL репозитория",
			slog.String("repo_url", cfg.RepoURL),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.NewAppError(apperrors.ErrGiteaURLParse,
			fmt.Sprintf("не удалось разобрать URL репозитория: %s", cfg.RepoURL), err)
	}
	cfg.Owner = owner
	cfg.Repo = repo

	// Логирование: при любой проблеме откатываемся на дефолты,
	// запуск продолжается.
	lc, lcErr := loadLoggingConfig(cfg, l)
	if lcErr != nil {
		l.Warn("секция логирования не загрузилась, используются дефолты",
			slog.String("error", lcErr.Error()))
		lc = defaultLoggingConfig()
	} else if vErr := validateLoggingConfig(lc); vErr != nil {
		l.Warn("секция логирования невалидна, используются дефолты",
			slog.String("error", vErr.Error()))
		lc = defaultLoggingConfig()
	}
	cfg.LoggingConfig = lc

	// Метрики: невалидную секцию выключаем при загрузке, а не при первом
	// push в runtime.
	mc, mcErr := loadMetricsConfig(cfg, l)
	if mcErr != nil {
		l.Warn("секция метрик не загрузилась, метрики отключены",
			slog.String("error", mcErr.Error()))
		mc = defaultMetricsConfig()
	} else if mc.Enabled {
		if vErr := validateMetricsConfig(mc); vErr != nil {
			l.Warn("секция метрик невалидна, метрики отключены",
				slog.String("error", vErr.Error()))
			mc.Enabled = false
		}
	}
	cfg.MetricsConfig = mc

	// Трейсинг: та же схема, что и у метрик.
	tc, tcErr := loadTracingConfig(cfg, l)
	if tcErr != nil {
		l.Warn("секция трейсинга не загрузилась, трейсинг отключён",
			slog.String("error", tcErr.Error()))
		tc = defaultTracingConfig()
	} else if tc.Enabled {
		if vErr := validateTracingConfig(tc); vErr != nil {
			l.Warn("секция трейсинга невалидна, трейсинг отключён",
				slog.String("error", vErr.Error()))
			tc.Enabled = false
		}
	}
	cfg.TracingConfig = tc

	return cfg, nil
}

// readConfigFile читает файл конфигурации и применяет переопределения из
// переменных окружения I2M_*. Файлы .yaml/.yml разбираются через yaml.v3,
// остальные (config.json) — через cleanenv.
func readConfigFile(configPath string) (*FileConfig, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrConfigLoad,
			fmt.Sprintf("файл конфигурации недоступен: %s", configPath), err)
	}

	var fileConfig FileConfig
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrConfigLoad,
				fmt.Sprintf("не удалось прочитать файл конфигурации: %s", configPath), err)
		}
		if err = yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrConfigParse,
				fmt.Sprintf("не удалось разобрать YAML конфигурацию: %s", configPath), err)
		}
		// yaml.v3 не знает про env-теги, поэтому переопределения
		// применяются отдельным проходом cleanenv.
		if err = cleanenv.ReadEnv(&fileConfig); err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrConfigParse,
				"не удалось применить переменные окружения", err)
		}
	default:
		// cleanenv разбирает файл по расширению и сам применяет env-переопределения
		if err := cleanenv.ReadConfig(configPath, &fileConfig); err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrConfigParse,
				fmt.Sprintf("не удалось разобрать файл конфигурации: %s", configPath), err)
		}
	}

	return &fileConfig, nil
}

// validateRequiredFields проверяет параметры, без которых невозможно
// обратиться к Gitea API. Ошибка перечисляет все отсутствующие параметры
// сразу, чтобы оператор не исправлял их по одному.
func validateRequiredFields(cfg *Config, l *slog.Logger) error {
	var missing []string
	if cfg.GiteaURL == "" {
		missing = append(missing, "gitea_url")
	}
	if cfg.AccessToken == "" {
		missing = append(missing, "token")
	}
	if len(missing) == 0 {
		return nil
	}

	msg := fmt.Sprintf("отсутствуют обязательные параметры конфигурации: %s",
		strings.Join(missing, ", "))
	l.Error(msg)
	return apperrors.NewAppError(apperrors.ErrConfigValidate, msg, nil)
}

// getSlog создаёт bootstrap-логгер загрузки конфигурации: JSON в stderr
// (stdout принадлежит результату команды), уровень из I2M_LOG_LEVEL,
// неизвестный уровень трактуется как info.
func getSlog(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case constants.LogLevelDebug:
		level = slog.LevelDebug
	case constants.LogLevelWarn:
		level = slog.LevelWarn
	case constants.LogLevelError:
		level = slog.LevelError
	}

	l := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			// Полный путь исходника в каждой записи не нужен.
			if a.Key == slog.SourceKey {
				src := a.Value.Any().(*slog.Source)
				src.File = path.Base(src.File)
			}
			return a
		},
	}))
	return l.With(slog.Group("app", slog.String("version", constants.Version)))
}
