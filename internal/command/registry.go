package command

import (
	"regexp"
	"sort"
	"sync"
)

// Реестр команд. Обработчики регистрируют себя из init(), поэтому
// доступ защищён мьютексом: порядок инициализации пакетов не гарантирует
// отсутствия конкуренции с ранним чтением.
var (
	registry = map[string]Handler{}
	mu       sync.RWMutex

	// Строгий kebab-case: начинается с буквы, дефисы одиночные и не
	// на краях. "sync-all" валидно, "Sync", "2x", "a--b", "a-" — нет.
	commandNamePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
)

// Register добавляет обработчик в реестр:
//
//	func init() {
//	    command.Register(&Handler{})
//	}
//
// Нарушения — nil, пустое или не-kebab-case имя, повторная
// регистрация — это ошибки программирования, поэтому panic.
func Register(h Handler) {
	if h == nil {
		panic("command: nil handler")
	}
	cmd := h.Name()
	if cmd == "" {
		panic("command: empty handler name")
	}
	if !commandNamePattern.MatchString(cmd) {
		panic("command: invalid handler name format (must be kebab-case): " + cmd)
	}

	mu.Lock()
	defer mu.Unlock()

	if _, taken := registry[cmd]; taken {
		panic("command: duplicate handler registration for " + cmd)
	}
	registry[cmd] = h
}

// Get ищет обработчик по имени команды.
func Get(name string) (Handler, bool) {
	mu.RLock()
	defer mu.RUnlock()
	handler, ok := registry[name]
	return handler, ok
}

// All отдаёт снимок реестра. Возвращается копия: вызывающий может
// свободно её модифицировать.
func All() map[string]Handler {
	mu.RLock()
	defer mu.RUnlock()
	snapshot := make(map[string]Handler, len(registry))
	for cmd, h := range registry {
		snapshot[cmd] = h
	}
	return snapshot
}

// Names перечисляет зарегистрированные команды по алфавиту —
// help и сообщения об ошибках получают детерминированный порядок.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for cmd := range registry {
		out = append(out, cmd)
	}
	sort.Strings(out)
	return out
}

// clearRegistry сбрасывает реестр между тестами.
func clearRegistry() {
	mu.Lock()
	defer mu.Unlock()
	registry = map[string]Handler{}
}
