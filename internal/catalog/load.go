package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/dimbot/lexctl/internal/descriptor"
	"github.com/dimbot/lexctl/internal/fault"
)

const (
	slotsFile     = "slots.yaml"
	botFile       = "bot.yaml"
	intentPattern = "intents/**/*.{yaml,yml}"
)

// intentFile is the on-disk form of an intent. Slots lists shared slot
// names; an empty list means every shared slot.
type intentFile struct {
	Name                string                   `yaml:"name"`
	Description         string                   `yaml:"description"`
	SampleUtterances    []string                 `yaml:"sample_utterances"`
	Slots               []string                 `yaml:"slots"`
	ConfirmationPrompt  descriptor.Prompt        `yaml:"confirmation_prompt"`
	RejectionStatement  descriptor.MessageBundle `yaml:"rejection_statement"`
	ConclusionStatement descriptor.MessageBundle `yaml:"conclusion_statement"`
}

type botOverrides struct {
	Locale         string                   `yaml:"locale"`
	ChildDirected  *bool                    `yaml:"child_directed"`
	AbortStatement descriptor.MessageBundle `yaml:"abort_statement"`
}

// LoadDir reads a catalog from dir:
//
//	slots.yaml            optional, list of shared slots (built-in set if absent)
//	intents/**/*.yaml     one intent per file, applied in path order
//	bot.yaml              optional, locale / child_directed / abort_statement
//
// The fulfillment hook and bot name always come from opts.
func LoadDir(dir string, opts Options) (*Catalog, error) {
	return LoadFS(os.DirFS(dir), opts)
}

// LoadFS is LoadDir over an arbitrary filesystem.
func LoadFS(fsys fs.FS, opts Options) (*Catalog, error) {
	slots := SharedSlots()
	if err := readYAML(fsys, slotsFile, &slots, true); err != nil {
		return nil, err
	}
	byName := make(map[string]descriptor.SlotSpec, len(slots))
	for _, s := range slots {
		byName[s.Name] = s
	}

	paths, err := doublestar.Glob(fsys, intentPattern)
	if err != nil {
		return nil, fmt.Errorf("catalog: glob %q: %w", intentPattern, err)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fault.Validationf("catalog: no intent files match %q", intentPattern)
	}

	intents := make([]descriptor.IntentSpec, 0, len(paths))
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		var f intentFile
		if err := readYAML(fsys, p, &f, false); err != nil {
			return nil, err
		}
		spec, err := f.toSpec(slots, byName, opts.Fulfillment)
		if err != nil {
			return nil, fmt.Errorf("catalog: %s: %w", p, err)
		}
		intents = append(intents, spec)
		names = append(names, spec.Name)
	}

	bot := Bot(opts.BotName, opts.Locale, opts.ChildDirected, names)
	var over botOverrides
	if err := readYAML(fsys, botFile, &over, true); err != nil {
		return nil, err
	}
	if over.Locale != "" {
		bot.Locale = over.Locale
	}
	if over.ChildDirected != nil {
		bot.ChildDirected = *over.ChildDirected
	}
	if len(over.AbortStatement) > 0 {
		bot.AbortStatement = over.AbortStatement
	}

	c := &Catalog{Slots: slots, Intents: intents, Bot: bot}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (f intentFile) toSpec(shared []descriptor.SlotSpec, byName map[string]descriptor.SlotSpec, hook descriptor.FulfillmentHook) (descriptor.IntentSpec, error) {
	var slots []descriptor.SlotSpec
	if len(f.Slots) == 0 {
		slots = append(slots, shared...)
	} else {
		for _, n := range f.Slots {
			s, ok := byName[n]
			if !ok {
				return descriptor.IntentSpec{}, fault.Validationf("intent %q references unknown slot %q", f.Name, n)
			}
			slots = append(slots, s)
		}
	}

	rejectionStatement := f.RejectionStatement
	if len(rejectionStatement) == 0 {
		rejectionStatement = descriptor.PlainText(rejection)
	}
	confirmation := f.ConfirmationPrompt
	if confirmation.MaxAttempts == 0 {
		confirmation.MaxAttempts = confirmationMaxAttempts
	}

	return descriptor.IntentSpec{
		Name:                f.Name,
		Description:         f.Description,
		SampleUtterances:    f.SampleUtterances,
		Slots:               slots,
		ConfirmationPrompt:  confirmation,
		RejectionStatement:  rejectionStatement,
		ConclusionStatement: f.ConclusionStatement,
		Fulfillment:         hook,
	}, nil
}

func readYAML(fsys fs.FS, name string, out any, optional bool) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("catalog: read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fault.New(fault.Validation, "catalog: parse "+name, err)
	}
	return nil
}
