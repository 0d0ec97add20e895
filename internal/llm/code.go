package llm

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Plan and develop instruction blocks appended between the file dump and
// the user's objectives.
const (
	PlanInstructions = `
First: write the list of files that are going to be created/updated. Untouched files should not be added to the list.

Second: come with a short description describing what you're going to do.

Third: You should create a detailed list of steps on how to update the code above to achieve the objectives below. Be descriptive in text, do not write any code, and make sure that you write only a direct list of steps about the changes needed to achieve the objectives.

Objectives:

1.`

	DevelopInstructions = `
Given the files above, write the code necessary to achieve the objectives below. You can make changes to files, create new files, or delete files.

Objectives:

1.`
)

// BuildCodePrompt concatenates the contents of the given files, each under
// a path header, followed by the instruction block for the mode ("plan" or
// "develop") and the user's objectives.
func BuildCodePrompt(files []string, mode, objectives string) (string, error) {
	var b strings.Builder
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		fmt.Fprintf(&b, "## %s\n\n```\n%s\n```\n\n", path, strings.TrimRight(string(data), "\n"))
	}

	switch mode {
	case "plan":
		b.WriteString(PlanInstructions)
	case "develop":
		b.WriteString(DevelopInstructions)
	default:
		return "", fmt.Errorf("unknown mode %q (supported: plan, develop)", mode)
	}
	b.WriteString(" ")
	b.WriteString(objectives)
	return b.String(), nil
}

const filenameFallback = "refactor_plan.md"

var snakeCaseRe = regexp.MustCompile(`^[a-z0-9_]+$`)

// GenerateFilename asks the model for a snake_case filename describing the
// objectives. Invalid answers are retried up to three times with the bad
// attempt fed back; the fallback name is used when every attempt fails or
// the API errors out.
func GenerateFilename(ctx context.Context, g Generator, objectives string) string {
	prompt := fmt.Sprintf(`Based on the following refactoring objectives, generate ONLY a descriptive filename in snake_case format.

%s

Requirements:
- snake_case format (lowercase with underscores)
- descriptive of the refactoring goals
- suitable for a file
- concise but informative
- NO file extension
- NO extra text, explanations, or quotes

Output ONLY the filename. Example: refactor_user_authentication`, objectives)

	for attempt := 0; attempt < 3; attempt++ {
		text, _, err := g.Generate(ctx, prompt)
		if err != nil {
			return filenameFallback
		}
		name := strings.TrimSpace(stripMarkdownFences(text))
		if IsValidFilename(name) {
			return name + ".md"
		}
		prompt += fmt.Sprintf("\n\nPrevious invalid attempt: '%s'\nTry again with a valid snake_case filename:", name)
	}
	return filenameFallback
}

// IsValidFilename reports whether name is a safe snake_case filename stem.
func IsValidFilename(name string) bool {
	if name == "" || len(name) > 200 {
		return false
	}
	if !snakeCaseRe.MatchString(name) {
		return false
	}
	switch name {
	case "con", "prn", "aux", "nul":
		return false
	}
	return true
}
