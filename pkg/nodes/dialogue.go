package nodes

import (
	"strings"
)

// Dialogue is the configurable data behind the nodes: keyword vocabularies and prompt wording.
//
// Prompts may use these placeholders:
//
//	{asset_type} {configuration} {reason} {options} {asset_types}
type Dialogue struct {
	// Vocabulary lists recognized asset types. Order breaks ties when a message mentions several.
	Vocabulary []string `json:"vocabulary" yaml:"vocabulary" mapstructure:"vocabulary"`
	Greetings  []string `json:"greetings" yaml:"greetings" mapstructure:"greetings"`
	Farewells  []string `json:"farewells" yaml:"farewells" mapstructure:"farewells"`
	Prompts    Prompts  `json:"prompts" yaml:"prompts" mapstructure:"prompts"`
}

// Prompts holds the assistant's wording for every reply.
type Prompts struct {
	Greeting          string `json:"greeting" yaml:"greeting" mapstructure:"greeting"`
	AssetAvailable    string `json:"asset_available" yaml:"asset_available" mapstructure:"asset_available"`
	NoConfigurations  string `json:"no_configurations" yaml:"no_configurations" mapstructure:"no_configurations"`
	AssetUnavailable  string `json:"asset_unavailable" yaml:"asset_unavailable" mapstructure:"asset_unavailable"`
	AssetUnrecognized string `json:"asset_unrecognized" yaml:"asset_unrecognized" mapstructure:"asset_unrecognized"`
	AskConfiguration  string `json:"ask_configuration" yaml:"ask_configuration" mapstructure:"ask_configuration"`
	AskReason         string `json:"ask_reason" yaml:"ask_reason" mapstructure:"ask_reason"`
	Summary           string `json:"summary" yaml:"summary" mapstructure:"summary"`
	Continue          string `json:"continue" yaml:"continue" mapstructure:"continue"`
	Farewell          string `json:"farewell" yaml:"farewell" mapstructure:"farewell"`
	Invalid           string `json:"invalid" yaml:"invalid" mapstructure:"invalid"`
}

// DefaultDialogue returns the shipped vocabulary and wording.
func DefaultDialogue() Dialogue {
	return Dialogue{
		Vocabulary: []string{"laptop", "monitor", "keyboard", "mouse", "desktop"},
		Greetings:  []string{"hi", "hii", "hello", "hey", "good morning", "good afternoon"},
		Farewells:  []string{"no", "nope", "bye", "goodbye", "thanks", "thank you", "that's all", "nothing"},
		Prompts: Prompts{
			Greeting: "Hello! I can help you with asset requests. " +
				"What type of asset are you looking for? (e.g., {asset_types})",
			AssetAvailable: "I can help you with a {asset_type} request. " +
				"Here are the available configurations:\n{options}\n\nPlease specify your preferred configuration.",
			NoConfigurations: "I can help you with a {asset_type} request. " +
				"There are no predefined configurations, so please describe the configuration you need.",
			AssetUnavailable: "I apologize, but {asset_type}s are currently not available. " +
				"Would you like to request another asset? You can choose from: {asset_types}.",
			AssetUnrecognized: "I'm not sure which asset you need. " +
				"Please tell me one of the asset types I can help with: {asset_types}.",
			AskConfiguration: "Please specify your preferred configuration for the {asset_type}.",
			AskReason:        "Thank you for providing the configuration. Could you please specify the reason for your request?",
			Summary: "I've recorded your request for a {asset_type} with configuration: {configuration}.\n" +
				"Reason: {reason}\n\n" +
				"Your request has been submitted and will be reviewed by the IT team. " +
				"Is there anything else you need help with?",
			Continue: "Sure! What type of asset are you looking for? You can choose from: {asset_types}.",
			Farewell: "Thank you! Your request is with the IT team. Say hello any time to start a new request.",
			Invalid: "I apologize, but I can only help with asset-related queries. " +
				"Could you please specify what type of asset you're interested in? You can choose from: {asset_types}.",
		},
	}
}

// WithDefaults fills every empty field from DefaultDialogue.
func (d Dialogue) WithDefaults() Dialogue {
	def := DefaultDialogue()
	if len(d.Vocabulary) == 0 {
		d.Vocabulary = def.Vocabulary
	}
	if len(d.Greetings) == 0 {
		d.Greetings = def.Greetings
	}
	if len(d.Farewells) == 0 {
		d.Farewells = def.Farewells
	}
	p, dp := &d.Prompts, def.Prompts
	fill(&p.Greeting, dp.Greeting)
	fill(&p.AssetAvailable, dp.AssetAvailable)
	fill(&p.NoConfigurations, dp.NoConfigurations)
	fill(&p.AssetUnavailable, dp.AssetUnavailable)
	fill(&p.AssetUnrecognized, dp.AssetUnrecognized)
	fill(&p.AskConfiguration, dp.AskConfiguration)
	fill(&p.AskReason, dp.AskReason)
	fill(&p.Summary, dp.Summary)
	fill(&p.Continue, dp.Continue)
	fill(&p.Farewell, dp.Farewell)
	fill(&p.Invalid, dp.Invalid)
	return d
}

func fill(dst *string, def string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = def
	}
}

// vars carries the values substituted into prompt placeholders.
type vars struct {
	AssetType     string
	Configuration string
	Reason        string
	Options       []string
}

// render substitutes placeholders. Lists keep the order they were given in.
func (d Dialogue) render(template string, v vars) string {
	options := make([]string, len(v.Options))
	for i, o := range v.Options {
		options[i] = "- " + o
	}
	r := strings.NewReplacer(
		"{asset_type}", v.AssetType,
		"{configuration}", v.Configuration,
		"{reason}", v.Reason,
		"{options}", strings.Join(options, "\n"),
		"{asset_types}", strings.Join(d.Vocabulary, ", "),
	)
	return r.Replace(template)
}
