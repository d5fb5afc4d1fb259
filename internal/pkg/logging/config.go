package logging

// Форматы вывода.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Уровни логирования в порядке возрастания важности.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Назначения вывода.
const (
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// Дефолты конфигурации. На них опираются и DefaultConfig,
// и слой конфигурации приложения — менять в одном месте.
const (
	DefaultLevel      = LevelInfo
	DefaultFormat     = FormatText
	DefaultOutput     = OutputStderr
	DefaultFilePath   = "/var/log/issue2md.log"
	DefaultMaxSize    = 100 // МБ
	DefaultMaxBackups = 3
	DefaultMaxAge     = 7 // дней
	DefaultCompress   = true
)

// Config описывает поведение логгера.
type Config struct {
	Format   string // "json" для машинной обработки, "text" для чтения глазами
	Level    string // минимальный уровень записи: "debug", "info", "warn", "error"
	Output   string // "stderr" либо "file"
	FilePath string // путь файла логов при Output="file"

	// Параметры ротации lumberjack, действуют при Output="file".
	MaxSize    int  // мегабайты до начала нового файла
	MaxBackups int  // сколько ротированных файлов хранить
	MaxAge     int  // дней хранения ротированных файлов
	Compress   bool // gzip для ротированных файлов
}

// DefaultConfig — text-логи уровня info в stderr.
func DefaultConfig() Config {
	return Config{
		Level: DefaultLevel, Format: DefaultFormat,
		Output: DefaultOutput, FilePath: DefaultFilePath,
		MaxSize: DefaultMaxSize, MaxBackups: DefaultMaxBackups,
		MaxAge: DefaultMaxAge, Compress: DefaultCompress,
	}
}
