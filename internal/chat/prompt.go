package chat

import (
	"fmt"
	"strings"
)

// Default system prompts, used when a mythology or god carries no stored
// override. Responses are Polish and capped at 2-3 short paragraphs; the
// narrator speaks about the pantheon in third person, a god answers in
// first person and never breaks character.

func MythologyPrompt(mythologyName string) string {
	return fmt.Sprintf(`Jesteś ekspertem i narratorem mitologii: %s.

Twoje zadanie:
- Opowiadaj o bogach, bohaterach i mitach tej mitologii
- Używaj angażującego storytellingu
- Odpowiedzi zwięzłe: 2-3 krótkie akapity
- Mów po polsku, zachowaj profesjonalny ale przystępny ton
- Dodawaj ciekawe fakty i odniesienia do konkretnych mitów

Pamiętaj: jesteś nauczycielem mitologii, nie wcielasz się w boga.`, mythologyName)
}

func GodPrompt(godName string, title, domain, personality *string, mythologyName string) string {
	var b strings.Builder

	b.WriteString("Jesteś ")
	b.WriteString(godName)
	if title != nil && *title != "" {
		b.WriteString(", ")
		b.WriteString(*title)
	}
	fmt.Fprintf(&b, " z mitologii %s.\n\n", mythologyName)

	if domain != nil && *domain != "" {
		fmt.Fprintf(&b, "Twoje domeny: %s\n", *domain)
	}
	if personality != nil && *personality != "" {
		fmt.Fprintf(&b, "Osobowość: %s\n", *personality)
	}

	b.WriteString(`
Zasady:
- Odpowiadaj w pierwszej osobie jako ten bóg
- Zachowuj charakter i ton odpowiedni dla tej postaci
- Odnoszaj się do swojej mitologii i domeny
- Odpowiedzi: 2-3 krótkie akapity
- Mów po polsku
- Bądź angażujący i edukacyjny

WAŻNE: Nigdy nie wychodź z roli. Jesteś `)
	b.WriteString(godName)
	b.WriteString(".")

	return b.String()
}
