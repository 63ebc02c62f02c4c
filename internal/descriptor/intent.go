package descriptor

import (
	"fmt"

	"github.com/dimbot/lexctl/internal/fault"
)

// SlotConstraint says whether the intent must collect a slot.
type SlotConstraint string

const (
	SlotRequired SlotConstraint = "Required"
	SlotOptional SlotConstraint = "Optional"
)

// SlotSpec describes one typed value an intent collects from the user.
// Priority orders elicitation; lower values are asked first.
type SlotSpec struct {
	Name        string         `yaml:"name" json:"name"`
	Constraint  SlotConstraint `yaml:"constraint" json:"constraint"`
	BuiltinType string         `yaml:"slot_type" json:"slot_type"`
	Prompt      Prompt         `yaml:"prompt" json:"prompt"`
	Priority    int            `yaml:"priority" json:"priority"`
}

// Validate checks a single slot in isolation.
func (s SlotSpec) Validate() error {
	if s.Name == "" {
		return fault.Validationf("slot: name is required")
	}
	if s.Constraint != SlotRequired && s.Constraint != SlotOptional {
		return fault.Validationf("slot %q: constraint must be Required or Optional, got %q", s.Name, s.Constraint)
	}
	if s.BuiltinType == "" {
		return fault.Validationf("slot %q: slot type is required", s.Name)
	}
	if s.Priority < 1 {
		return fault.Validationf("slot %q: priority %d is not positive", s.Name, s.Priority)
	}
	return s.Prompt.Validate(fmt.Sprintf("slot %q prompt", s.Name))
}

// ValidateSlots checks every slot and that names and priorities are unique
// across the list.
func ValidateSlots(slots []SlotSpec) error {
	names := make(map[string]bool, len(slots))
	priorities := make(map[int]string, len(slots))
	for _, s := range slots {
		if err := s.Validate(); err != nil {
			return err
		}
		if names[s.Name] {
			return fault.Validationf("slot %q is defined more than once", s.Name)
		}
		names[s.Name] = true
		if other, ok := priorities[s.Priority]; ok {
			return fault.Validationf("slots %q and %q share priority %d", other, s.Name, s.Priority)
		}
		priorities[s.Priority] = s.Name
	}
	return nil
}

// FulfillmentHook points an intent at the function that runs once every
// required slot is filled.
type FulfillmentHook struct {
	URI            string `yaml:"uri" json:"uri"`
	MessageVersion string `yaml:"message_version" json:"message_version"`
}

// IntentSpec is the desired state of one intent.
type IntentSpec struct {
	Name                string          `yaml:"name" json:"name"`
	Description         string          `yaml:"description,omitempty" json:"description,omitempty"`
	SampleUtterances    []string        `yaml:"sample_utterances" json:"sample_utterances"`
	Slots               []SlotSpec      `yaml:"slots" json:"slots"`
	ConfirmationPrompt  Prompt          `yaml:"confirmation_prompt" json:"confirmation_prompt"`
	RejectionStatement  MessageBundle   `yaml:"rejection_statement" json:"rejection_statement"`
	ConclusionStatement MessageBundle   `yaml:"conclusion_statement" json:"conclusion_statement"`
	Fulfillment         FulfillmentHook `yaml:"fulfillment" json:"fulfillment"`
}

// Validate checks the intent and all of its slots.
func (s IntentSpec) Validate() error {
	if s.Name == "" {
		return fault.Validationf("intent: name is required")
	}
	if len(s.SampleUtterances) == 0 {
		return fault.Validationf("intent %q: at least one sample utterance is required", s.Name)
	}
	seen := make(map[string]bool, len(s.SampleUtterances))
	for _, u := range s.SampleUtterances {
		if u == "" {
			return fault.Validationf("intent %q: empty sample utterance", s.Name)
		}
		if seen[u] {
			return fault.Validationf("intent %q: duplicate sample utterance %q", s.Name, u)
		}
		seen[u] = true
	}
	if err := ValidateSlots(s.Slots); err != nil {
		return fmt.Errorf("intent %q: %w", s.Name, err)
	}
	if err := s.ConfirmationPrompt.Validate(fmt.Sprintf("intent %q confirmation prompt", s.Name)); err != nil {
		return err
	}
	if err := s.RejectionStatement.Validate(fmt.Sprintf("intent %q rejection statement", s.Name)); err != nil {
		return err
	}
	if err := s.ConclusionStatement.Validate(fmt.Sprintf("intent %q conclusion statement", s.Name)); err != nil {
		return err
	}
	if s.Fulfillment.URI == "" {
		return fault.Validationf("intent %q: fulfillment URI is required", s.Name)
	}
	if s.Fulfillment.MessageVersion == "" {
		return fault.Validationf("intent %q: fulfillment message version is required", s.Name)
	}
	return nil
}
