// Package prompt builds the LLM prompts for the generate/review loop.
package prompt

import (
	"fmt"
	"strings"
)

// GenerationInput carries everything the generation prompt needs.
type GenerationInput struct {
	UseCase      string
	Goals        []string
	Language     string // programming language of the generated code
	PreviousCode string   // empty on the first round
	Feedback     string   // reviewer feedback from the previous round
	AsDiff       bool     // ask for a unified diff instead of a full program
	ProjectFiles []string // workspace file listing for project tasks
}

// System returns the system message for all calls.
func System() string {
	return "You are an expert software engineer. You write correct, " +
		"self-contained programs and precise code reviews. Always put code " +
		"in fenced code blocks with a language tag."
}

// Generation builds the prompt asking the model to write or revise the
// program.
func Generation(in GenerationInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a complete %s program for the following use case.\n\n", in.Language)
	fmt.Fprintf(&b, "Use case:\n%s\n", in.UseCase)

	if len(in.Goals) > 0 {
		b.WriteString("\nGoals:\n")
		for i, g := range in.Goals {
			fmt.Fprintf(&b, "%d. %s\n", i+1, g)
		}
	}

	if len(in.ProjectFiles) > 0 {
		b.WriteString("\nProject files:\n")
		for _, f := range in.ProjectFiles {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	if in.PreviousCode != "" {
		fmt.Fprintf(&b, "\nHere is the current version of the program:\n```%s\n%s\n```\n",
			in.Language, strings.TrimSuffix(in.PreviousCode, "\n"))
	}
	if in.Feedback != "" {
		fmt.Fprintf(&b, "\nReviewer feedback to address:\n%s\n", in.Feedback)
	}

	if in.AsDiff && in.PreviousCode != "" {
		b.WriteString("\nRespond with a unified diff against the current version, " +
			"in a ```diff code block. Use @@ hunk headers with line numbers and " +
			"include a few lines of unchanged context around each change. " +
			"Do not resend the whole program.")
	} else {
		fmt.Fprintf(&b, "\nRespond with the complete program in a single ```%s code block.", in.Language)
	}

	return b.String()
}

// Review builds the prompt asking the model to review a program run.
func Review(useCase string, goals []string, code, output string) string {
	var b strings.Builder

	b.WriteString("Review the following program and its output against the use case.\n\n")
	fmt.Fprintf(&b, "Use case:\n%s\n", useCase)
	if len(goals) > 0 {
		b.WriteString("\nGoals:\n")
		for i, g := range goals {
			fmt.Fprintf(&b, "%d. %s\n", i+1, g)
		}
	}
	fmt.Fprintf(&b, "\nProgram:\n```\n%s\n```\n", strings.TrimSuffix(code, "\n"))
	fmt.Fprintf(&b, "\nProgram output:\n```\n%s\n```\n", strings.TrimSuffix(output, "\n"))

	b.WriteString(`
Classify every issue you find by severity:
- Critical: the program crashes, produces wrong results, or fails the use case.
- Major: a goal is not met or behavior deviates noticeably from the use case.
- Minor: style, naming, or small improvements that do not affect correctness.

List each issue as "<severity>: <description>". If there are no issues, say so.`)

	return b.String()
}

// Verdict builds the prompt asking for a final pass/fail call on the
// review. The reply is expected to start with True or False.
func Verdict(review string) string {
	return fmt.Sprintf(`Given this code review:

%s

Does the program fulfill its use case well enough to stop iterating? Minor issues are acceptable; Major and Critical issues are not.

Answer with exactly one word on the first line: True if the program is acceptable, False if another revision is needed.`, review)
}

// IsApproval interprets a verdict reply. Only a reply whose first word is
// "true" (any case) counts as approval.
func IsApproval(reply string) bool {
	trimmed := strings.TrimSpace(reply)
	if trimmed == "" {
		return false
	}
	first := strings.Fields(trimmed)[0]
	first = strings.Trim(first, ".,!:")
	return strings.EqualFold(first, "true")
}
