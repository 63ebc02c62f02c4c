package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dimbot/lexctl/internal/descriptor"
)

const hashPrefix = "sha256:"

// Options carries the deployment-specific values that are not part of the
// catalog content itself.
type Options struct {
	Fulfillment   descriptor.FulfillmentHook
	BotName       string
	Locale        string
	ChildDirected bool
}

// Catalog is the full set of descriptors for one run.
type Catalog struct {
	Slots   []descriptor.SlotSpec   `yaml:"slots"`
	Intents []descriptor.IntentSpec `yaml:"intents"`
	Bot     descriptor.BotSpec      `yaml:"bot"`
}

// Builtin returns the order-bot catalog.
func Builtin(opts Options) *Catalog {
	intents := OrderIntents(opts.Fulfillment)
	names := make([]string, len(intents))
	for i, in := range intents {
		names[i] = in.Name
	}
	return &Catalog{
		Slots:   SharedSlots(),
		Intents: intents,
		Bot:     Bot(opts.BotName, opts.Locale, opts.ChildDirected, names),
	}
}

// Validate checks the shared slots, every intent and the bot.
func (c *Catalog) Validate() error {
	if err := descriptor.ValidateSlots(c.Slots); err != nil {
		return fmt.Errorf("catalog: shared slots: %w", err)
	}
	for _, in := range c.Intents {
		if err := in.Validate(); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
	}
	if err := c.Bot.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}

// YAML encodes the catalog in its canonical form.
func (c *Catalog) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("catalog: encode: %w", err)
	}
	return out, nil
}

// Hash returns "sha256:<hex>" over the canonical YAML encoding. Two
// catalogs hash equal exactly when they would produce the same payloads.
func (c *Catalog) Hash() (string, error) {
	data, err := c.YAML()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hashPrefix + hex.EncodeToString(sum[:]), nil
}
