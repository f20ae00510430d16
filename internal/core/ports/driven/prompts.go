package driven

// Prompt names used by answer composition.
const (
	// PromptComposeSystem frames the assistant's role and grounding
	// rules for answer composition.
	PromptComposeSystem = "compose_system"

	// PromptComposeUser is the template combining retrieved context and
	// the user's question. It takes two %s placeholders: context, query.
	PromptComposeUser = "compose_user"
)

// PromptStore provides prompt templates for answer composition.
// Implementations may load them from user-editable files.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)
}
