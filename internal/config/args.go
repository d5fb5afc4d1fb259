package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Kargones/issue2md/internal/constants"
)

// usageLine описывает грамматику CLI; выводится в сообщениях об ошибках разбора.
const usageLine = "использование: issue2md <repo_url> [<target_file>] " +
	"[--complete FILE] [--comment ISSUE TEXT] [--close ISSUE] [--reopen ISSUE]"

// Action описывает одно действие над задачей, запрошенное флагом CLI.
type Action struct {
	// Kind — вид действия: constants.ActComment, ActClose или ActReopen.
	Kind string

	// Issue — номер задачи.
	Issue int64

	// Text — текст комментария (только для ActComment).
	Text string
}

// parsedArgs — результат разбора аргументов командной строки.
type parsedArgs struct {
	Command      string
	RepoURL      string
	TargetFile   string
	CompleteFile string
	Actions      []Action
}

// parseArgs разбирает аргументы командной строки (os.Args[1:]).
// Первым аргументом ожидается URL репозитория либо сервисная команда
// version/help. Флаги действий могут повторяться; порядок сохраняется.
func parseArgs(args []string) (*parsedArgs, error) {
	if len(args) == 0 {
		return nil, errors.New("не указан URL репозитория; " + usageLine)
	}

	// Сервисные команды без репозитория
	switch args[0] {
	case constants.ActVersion:
		return &parsedArgs{Command: constants.ActVersion}, nil
	case constants.ActHelp, "--help", "-h":
		return &parsedArgs{Command: constants.ActHelp}, nil
	}

	if strings.HasPrefix(args[0], "-") {
		return nil, fmt.Errorf("первым аргументом должен быть URL репозитория, получено %q; %s",
			args[0], usageLine)
	}

	parsed := &parsedArgs{RepoURL: args[0]}

	i := 1
	for i < len(args) {
		arg := args[i]
		switch arg {
		case "--complete":
			value, err := flagValue(args, i, arg)
			if err != nil {
				return nil, err
			}
			parsed.CompleteFile = value
			i += 2
		case "--comment":
			if i+2 >= len(args) {
				return nil, fmt.Errorf("флаг --comment требует номер задачи и текст комментария; %s", usageLine)
			}
			issue, err := parseIssueNumber(args[i+1], arg)
			if err != nil {
				return nil, err
			}
			parsed.Actions = append(parsed.Actions, Action{
				Kind:  constants.ActComment,
				Issue: issue,
				Text:  args[i+2],
			})
			i += 3
		case "--close":
			issue, err := flagIssueNumber(args, i, arg)
			if err != nil {
				return nil, err
			}
			parsed.Actions = append(parsed.Actions, Action{Kind: constants.ActClose, Issue: issue})
			i += 2
		case "--reopen":
			issue, err := flagIssueNumber(args, i, arg)
			if err != nil {
				return nil, err
			}
			parsed.Actions = append(parsed.Actions, Action{Kind: constants.ActReopen, Issue: issue})
			i += 2
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("неизвестный флаг %q; %s", arg, usageLine)
			}
			if parsed.TargetFile != "" {
				return nil, fmt.Errorf("неожиданный аргумент %q; %s", arg, usageLine)
			}
			parsed.TargetFile = arg
			i++
		}
	}

	// Без флагов действий выполняется синхронизация, для неё нужен целевой файл.
	if len(parsed.Actions) == 0 {
		if parsed.TargetFile == "" {
			return nil, errors.New("не указан целевой markdown-файл; " + usageLine)
		}
		parsed.Command = constants.ActSync
		return parsed, nil
	}

	parsed.Command = parsed.Actions[0].Kind
	return parsed, nil
}

// flagValue возвращает значение флага args[i] или ошибку, если значение отсутствует.
func flagValue(args []string, i int, flag string) (string, error) {
	if i+1 >= len(args) {
		return "", fmt.Errorf("флаг %s требует значение; %s", flag, usageLine)
	}
	return args[i+1], nil
}

// flagIssueNumber возвращает номер задачи из значения флага args[i].
func flagIssueNumber(args []string, i int, flag string) (int64, error) {
	value, err := flagValue(args, i, flag)
	if err != nil {
		return 0, err
	}
	return parseIssueNumber(value, flag)
}

// parseIssueNumber разбирает номер задачи; номер должен быть положительным.
func parseIssueNumber(value, flag string) (int64, error) {
	issue, err := strconv.ParseInt(value, 10, 64)
	if err != nil || issue <= 0 {
		return 0, fmt.Errorf("флаг %s требует положительный номер задачи, получено %q", flag, value)
	}
	return issue, nil
}
