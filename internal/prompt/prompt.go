// Package prompt builds the text sent to the model for each variant.
package prompt

import "strings"

// Chat appends the standing instruction to the user's input.
func Chat(input, instruction string) string {
	return input + ". " + instruction
}

// Guide frames question with the instruction and the full reference document.
func Guide(instruction, document, question string) string {
	var b strings.Builder
	b.Grow(len(instruction) + len(document) + len(question) + 32)
	b.WriteString(instruction)
	b.WriteString("\n\n")
	b.WriteString(document)
	b.WriteString("\n\nUser question: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}
