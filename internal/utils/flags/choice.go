package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderOpen  = "<"
	choicePlaceholderClose = ">"
	choiceListSeparator    = "|"
)

// FormatChoiceUsage builds a flag usage string listing the accepted choices,
// with the default choice capitalized inside the placeholder. Blank and
// duplicate choices are dropped.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))

	seenChoices := make(map[string]struct{}, len(choices))
	renderedChoices := make([]string, 0, len(choices))
	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		if len(trimmedChoice) == 0 {
			continue
		}

		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, duplicate := seenChoices[normalizedChoice]; duplicate {
			continue
		}
		seenChoices[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			trimmedChoice = strings.ToUpper(trimmedChoice)
		}
		renderedChoices = append(renderedChoices, trimmedChoice)
	}

	placeholder := choicePlaceholderOpen + strings.Join(renderedChoices, choiceListSeparator) + choicePlaceholderClose
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf("`%s`", placeholder)
	}
	return fmt.Sprintf("`%s` %s", placeholder, trimmedDescription)
}
