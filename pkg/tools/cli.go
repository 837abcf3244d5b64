/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package tools

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

func ConfirmOperation(s string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s [y/N]: ", s)
	text, _ := reader.ReadString('\n')
	text = strings.Replace(text, "\n", "", -1)
	return strings.ToLower(text) == "y"
}

// PromptLine asks for a line of input and returns it trimmed. Paths
// dragged onto a terminal arrive wrapped in quotes, so surrounding
// quotes are stripped too.
func PromptLine(s string) string {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s: ", s)
	text, _ := reader.ReadString('\n')
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"'`)
	return text
}
