package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

var stdin = bufio.NewReader(os.Stdin)

// Line читает строку из stdin.
func Line(label string) (string, error) {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("ошибка чтения ввода: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Password читает пароль без эха. Если stdin не терминал, пароль читается строкой.
func Password(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return Line(label)
	}

	fmt.Print(label)
	password, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("ошибка чтения пароля: %w", err)
	}
	return string(password), nil
}

// NewPassword запрашивает пароль дважды.
func NewPassword(label string) (string, error) {
	first, err := Password(label)
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", errors.New("пароль не может быть пустым")
	}

	second, err := Password("Повторите пароль: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("пароли не совпадают")
	}
	return first, nil
}
