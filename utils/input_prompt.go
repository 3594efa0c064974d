package utils

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ryanwalloh/assetkit/constants/lipgloss"
)

// InputPrompt prints label and reads one trimmed line from reader.
func InputPrompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(lipgloss.BlueSky.Render(label + " "))

	userInput, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return strings.TrimSpace(userInput), nil
		}
		return "", fmt.Errorf("error reading input: %w", err)
	}

	return strings.TrimSpace(userInput), nil
}

// ConfirmPromptWithContext asks a yes/no question and gives up when ctx is
// done. Anything but "y" or "yes" is a no.
func ConfirmPromptWithContext(ctx context.Context, reader *bufio.Reader, question string) (bool, error) {
	answer, err := InputPromptWithContext(ctx, reader, question+" (y/N):")
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

func isYes(answer string) bool {
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

// InputPromptWithContext prompts the user with context cancellation support
func InputPromptWithContext(ctx context.Context, reader *bufio.Reader, label string) (string, error) {
	type result struct {
		input string
		err   error
	}
	resultChan := make(chan result, 1)

	go func() {
		input, err := InputPrompt(reader, label)
		resultChan <- result{input: input, err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Println() // Print newline for clean exit
		return "", ctx.Err()
	case r := <-resultChan:
		return r.input, r.err
	}
}
