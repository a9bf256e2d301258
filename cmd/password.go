package cmd

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// resolvePassword replaces an empty password parameter with a masked
// interactive read. A missing password parameter is left alone: not every
// backend takes one, and blank-by-intent is spelled without the key.
func resolvePassword(name string, params map[string]any) error {
	pw, ok := params["password"]
	if !ok || pw.(string) != "" {
		return nil
	}

	prompt := fmt.Sprintf("%s password", name)
	if db, ok := params["database"].(string); ok && db != "" {
		prompt += " for " + db
	}
	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	entered, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	params["password"] = string(entered)
	return nil
}
