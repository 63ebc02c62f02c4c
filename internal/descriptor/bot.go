package descriptor

import (
	"fmt"

	"github.com/dimbot/lexctl/internal/fault"
)

// IntentRef names an intent version a bot is built from.
type IntentRef struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

// BotSpec is the desired state of a bot.
type BotSpec struct {
	Name           string        `yaml:"name" json:"name"`
	Locale         string        `yaml:"locale" json:"locale"`
	ChildDirected  bool          `yaml:"child_directed" json:"child_directed"`
	Intents        []IntentRef   `yaml:"intents" json:"intents"`
	AbortStatement MessageBundle `yaml:"abort_statement" json:"abort_statement"`
}

// IntentNames returns the referenced intent names in order.
func (s BotSpec) IntentNames() []string {
	names := make([]string, len(s.Intents))
	for i, ref := range s.Intents {
		names[i] = ref.Name
	}
	return names
}

// Validate checks the bot references at least one intent and carries an
// abort statement.
func (s BotSpec) Validate() error {
	if s.Name == "" {
		return fault.Validationf("bot: name is required")
	}
	if s.Locale == "" {
		return fault.Validationf("bot %q: locale is required", s.Name)
	}
	if len(s.Intents) == 0 {
		return fault.Validationf("bot %q: at least one intent is required", s.Name)
	}
	seen := make(map[string]bool, len(s.Intents))
	for _, ref := range s.Intents {
		if ref.Name == "" || ref.Version == "" {
			return fault.Validationf("bot %q: intent reference %+v is incomplete", s.Name, ref)
		}
		if seen[ref.Name] {
			return fault.Validationf("bot %q: intent %q is referenced more than once", s.Name, ref.Name)
		}
		seen[ref.Name] = true
	}
	return s.AbortStatement.Validate(fmt.Sprintf("bot %q abort statement", s.Name))
}

// AliasSpec is the desired state of a bot alias.
type AliasSpec struct {
	Name       string `yaml:"name" json:"name"`
	BotName    string `yaml:"bot_name" json:"bot_name"`
	BotVersion string `yaml:"bot_version" json:"bot_version"`
}

// Validate checks all alias fields are set.
func (s AliasSpec) Validate() error {
	if s.Name == "" || s.BotName == "" || s.BotVersion == "" {
		return fault.Validationf("alias: name, bot name and bot version are required, got %+v", s)
	}
	return nil
}

// Default values for the invoke permission statement.
const (
	DefaultPrincipal = "lex.amazonaws.com"
	DefaultAction    = "lambda:InvokeFunction"
)

// PermissionSpec is a resource-policy statement on the fulfillment
// function that lets the bot service invoke it.
type PermissionSpec struct {
	FunctionName string `yaml:"function_name" json:"function_name"`
	Principal    string `yaml:"principal" json:"principal"`
	StatementID  string `yaml:"statement_id" json:"statement_id"`
	Action       string `yaml:"action" json:"action"`
}

// Validate checks all statement fields are set.
func (s PermissionSpec) Validate() error {
	switch {
	case s.FunctionName == "":
		return fault.Validationf("permission: function name is required")
	case s.StatementID == "":
		return fault.Validationf("permission on %q: statement id is required", s.FunctionName)
	case s.Principal == "":
		return fault.Validationf("permission on %q: principal is required", s.FunctionName)
	case s.Action == "":
		return fault.Validationf("permission on %q: action is required", s.FunctionName)
	}
	return nil
}
