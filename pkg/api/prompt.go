package api

// Prompt is an immutable request unit: the user's message plus a system
// instruction. Either text may be empty. A Prompt is safe to share across
// goroutines because it exposes no mutators.
type Prompt struct {
	user   string
	system string
}

// NewPrompt returns a Prompt with the given user and system texts.
func NewPrompt(user, system string) *Prompt {
	return &Prompt{user: user, system: system}
}

// User returns the user text. A nil Prompt yields "".
func (p *Prompt) User() string {
	if p == nil {
		return ""
	}
	return p.user
}

// System returns the system instruction text. A nil Prompt yields "".
func (p *Prompt) System() string {
	if p == nil {
		return ""
	}
	return p.system
}

// String renders the prompt for debug logging.
func (p *Prompt) String() string {
	if p == nil {
		return "<nil prompt>"
	}
	return "system=" + quote(p.system) + " user=" + quote(p.user)
}

func quote(s string) string {
	return "\"" + s + "\""
}
