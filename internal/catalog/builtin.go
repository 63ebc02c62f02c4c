// Package catalog assembles the descriptors lexctl provisions: the shared
// slot set, the order intents, and the bot that references them. The
// built-in catalog can be replaced by a directory of YAML files.
package catalog

import (
	"github.com/dimbot/lexctl/internal/descriptor"
)

const (
	slotMaxAttempts         = 5
	confirmationMaxAttempts = 5
	rejection               = "Okay, I cancelled the order"
	abortStatement          = "Sorry I can't fulfill your request."
)

type slotDef struct {
	name, slotType, question string
}

var sharedSlots = []slotDef{
	{"FirstName", "AMAZON.US_FIRST_NAME", "What's your first name?"},
	{"LastName", "AMAZON.US_LAST_NAME", "What's your last name?"},
	{"Address", "AMAZON.StreetAddress", "What's your street address?"},
	{"City", "AMAZON.EUROPE_CITY", "What city are you in?"},
	{"Email", "AMAZON.EmailAddress", "What's your email address?"},
	{"PhoneNumber", "AMAZON.PhoneNumber", "What's your phone number?"},
	{"Date", "AMAZON.DATE", "On what date should I place the order?"},
	{"Time", "AMAZON.TIME", "For what time should I place the order?"},
}

type intentDef struct {
	name         string
	utterances   []string
	confirmation string
	conclusion   string
}

var orderIntents = []intentDef{
	{
		name:         "OrderTaxi",
		utterances:   []string{"Taxi", "Order taxi", "I want to order a taxi", "Call me a taxi"},
		confirmation: "Should I order the Taxi?",
		conclusion:   "Taxi is on its way!",
	},
	{
		name:         "OrderFood",
		utterances:   []string{"Food", "Order food", "I want to order food", "Order me some food"},
		confirmation: "Should I place the order?",
		conclusion:   "Food is on its way!",
	},
	{
		name:         "OrderHomeCare",
		utterances:   []string{"Home care", "I need a home care service"},
		confirmation: "Should I place the order?",
		conclusion:   "A home care professional is on their way!",
	},
	{
		name:         "OrderCleaning",
		utterances:   []string{"Cleaning service", "Order cleaning service", "I need someone to clean my house", "Order me a maid"},
		confirmation: "Should I place the order?",
		conclusion:   "A maid is on their way!",
	},
}

// SharedSlots returns the slot set every order intent collects. Priorities
// run 1..N in elicitation order.
func SharedSlots() []descriptor.SlotSpec {
	slots := make([]descriptor.SlotSpec, len(sharedSlots))
	for i, d := range sharedSlots {
		slots[i] = descriptor.SlotSpec{
			Name:        d.name,
			Constraint:  descriptor.SlotRequired,
			BuiltinType: d.slotType,
			Prompt: descriptor.Prompt{
				Messages:    descriptor.PlainText(d.question),
				MaxAttempts: slotMaxAttempts,
			},
			Priority: i + 1,
		}
	}
	return slots
}

// OrderIntents returns the four order intents, each carrying the shared
// slots and fulfilled by hook.
func OrderIntents(hook descriptor.FulfillmentHook) []descriptor.IntentSpec {
	intents := make([]descriptor.IntentSpec, len(orderIntents))
	for i, d := range orderIntents {
		intents[i] = descriptor.IntentSpec{
			Name:             d.name,
			SampleUtterances: append([]string(nil), d.utterances...),
			Slots:            SharedSlots(),
			ConfirmationPrompt: descriptor.Prompt{
				Messages:    descriptor.PlainText(d.confirmation),
				MaxAttempts: confirmationMaxAttempts,
			},
			RejectionStatement:  descriptor.PlainText(rejection),
			ConclusionStatement: descriptor.PlainText(d.conclusion),
			Fulfillment:         hook,
		}
	}
	return intents
}

// Bot builds a bot that references every named intent at $LATEST, keeping
// the given order.
func Bot(name, locale string, childDirected bool, intentNames []string) descriptor.BotSpec {
	refs := make([]descriptor.IntentRef, len(intentNames))
	for i, n := range intentNames {
		refs[i] = descriptor.IntentRef{Name: n, Version: descriptor.LatestVersion}
	}
	return descriptor.BotSpec{
		Name:           name,
		Locale:         locale,
		ChildDirected:  childDirected,
		Intents:        refs,
		AbortStatement: descriptor.PlainText(abortStatement),
	}
}
