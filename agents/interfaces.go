package agents

import (
	"ipo-radar/services"
)

// LLMService is the upstream the agents prompt. Defined in services so that
// agents never import a concrete client.
type LLMService = services.CompletionService
