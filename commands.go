package localise

import (
	"path/filepath"
	"strings"
	"sync"
)

// CommandFunc is a user-supplied pattern command. The parameter list it
// receives always starts with the command's own name.
type CommandFunc func(parameters []string) (string, error)

// CommandRegistry maps command names to callbacks. Inserts reject
// duplicates; lookups of unknown names fail. Reads clone the callback
// pointer under the read lock, so callbacks run without holding it.
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[string]CommandFunc
}

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{commands: make(map[string]CommandFunc)}
}

// Insert registers fn under name.
func (r *CommandRegistry) Insert(name string, fn CommandFunc) error {
	if r == nil || name == "" || fn == nil {
		return &CommandError{Kind: CommandInvalidType, Command: name}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.commands == nil {
		r.commands = make(map[string]CommandFunc)
	}
	if _, exists := r.commands[name]; exists {
		return &CommandError{Kind: CommandAlreadyExists, Command: name}
	}
	r.commands[name] = fn
	return nil
}

// Command returns the callback registered under name.
func (r *CommandRegistry) Command(name string) (CommandFunc, error) {
	if r == nil {
		return nil, &CommandError{Kind: CommandNotFound, Command: name}
	}

	r.mu.RLock()
	fn, ok := r.commands[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &CommandError{Kind: CommandNotFound, Command: name}
	}
	return fn, nil
}

// Execute looks up parameters[0] and invokes it with the full list.
func (r *CommandRegistry) Execute(parameters []string) (string, error) {
	if len(parameters) == 0 {
		return "", &CommandError{Kind: CommandParameterMissing}
	}

	fn, err := r.Command(parameters[0])
	if err != nil {
		return "", err
	}

	result, err := fn(parameters)
	if err != nil {
		if localisable, ok := err.(*CommandError); ok {
			return "", localisable
		}
		return "", &CommandError{Kind: CommandCustom, Command: parameters[0], Err: err}
	}
	return result, nil
}

// NewDefaultCommandRegistry returns a registry preloaded with the
// reference commands.
func NewDefaultCommandRegistry() *CommandRegistry {
	registry := NewCommandRegistry()
	registry.Insert("file_path", FilePathCommand)
	registry.Insert("english_a_or_an", EnglishAOrAnCommand)
	return registry
}

// FilePathCommand joins its parameters into a file path using the
// platform's separator.
func FilePathCommand(parameters []string) (string, error) {
	if len(parameters) < 2 {
		return "", &CommandError{Kind: CommandParameterMissing, Command: firstParameter(parameters), Parameter: "path"}
	}
	return filepath.Join(parameters[1:]...), nil
}

// EnglishAOrAnCommand selects the English indefinite article for its
// parameter using a vowel-start heuristic.
func EnglishAOrAnCommand(parameters []string) (string, error) {
	if len(parameters) < 2 {
		return "", &CommandError{Kind: CommandParameterMissing, Command: firstParameter(parameters), Parameter: "word"}
	}

	word := strings.TrimSpace(parameters[1])
	if word == "" {
		return "a", nil
	}
	switch word[0] {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return "an", nil
	}
	return "a", nil
}
