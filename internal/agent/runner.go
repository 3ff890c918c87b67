// Package agent drives the generate → execute → review loop.
package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forgeloop/forgeloop/internal/llm"
	"github.com/forgeloop/forgeloop/internal/markdown"
	"github.com/forgeloop/forgeloop/internal/patch"
	"github.com/forgeloop/forgeloop/internal/project"
	"github.com/forgeloop/forgeloop/internal/prompt"
	"github.com/forgeloop/forgeloop/internal/sandbox"
	"github.com/forgeloop/forgeloop/internal/ui"
	"github.com/forgeloop/forgeloop/internal/workspace"
)

// Generator is the LLM surface the runner needs; *llm.Client satisfies it.
type Generator interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// langExts maps the task language to the program file extension.
var langExts = map[string]string{
	"python": ".py",
	"sh":     ".sh",
	"bash":   ".sh",
	"go":     ".go",
	"ruby":   ".rb",
	"js":     ".js",
}

// Task describes one unit of work for the runner.
type Task struct {
	UseCase  string
	Goals    []string
	Language string // language tag of generated code blocks, e.g. "python"

	// EntryFile, when set, makes this a project task: the program lives at
	// this path inside the project root and diffs may touch other project
	// files through the project patcher.
	EntryFile string
}

// Result is the outcome of a full run.
type Result struct {
	Success     bool
	Rounds      int
	Code        string // final program source
	Review      string // last review text
	ProgramPath string // path of the last persisted version
}

// Runner iterates generation rounds until the reviewer approves or the
// round budget runs out.
type Runner struct {
	Gen         Generator
	Model       string
	Temperature float32
	MaxTokens   int

	Sandbox *sandbox.Runner
	Log     *Logger
	UI      *ui.Writer
	Usage   *llm.Tracker

	// Project applies multi-file diffs for project tasks. Required when
	// Task.EntryFile is set, unused otherwise.
	Project *patch.ProjectPatcher
	// Files lists workspace files for the generation prompt of project
	// tasks. Optional.
	Files *project.Folder

	WorkDir       string // where program versions are persisted
	MaxRounds     int
	Fuzziness     int // starting match tolerance for incoming diffs
	KeepArtifacts bool
}

// Run executes the loop for one task.
func (r *Runner) Run(ctx context.Context, task Task) (*Result, error) {
	if r.MaxRounds <= 0 {
		return nil, fmt.Errorf("max rounds must be positive, got %d", r.MaxRounds)
	}
	if err := os.MkdirAll(r.WorkDir, 0755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	res := &Result{}
	var versions []string
	defer func() {
		if r.KeepArtifacts {
			return
		}
		for _, v := range versions {
			if v != res.ProgramPath {
				os.Remove(v)
			}
		}
	}()

	code := ""
	var entryAbs string
	if task.EntryFile != "" {
		if r.Project == nil {
			return nil, fmt.Errorf("project task %q needs a project patcher", task.EntryFile)
		}
		abs, outside, err := workspace.NormalizeAndValidatePath(r.Project.Root, task.EntryFile)
		if err != nil {
			return nil, fmt.Errorf("resolve entry file: %w", err)
		}
		if outside {
			return nil, fmt.Errorf("entry file %s escapes the project root", task.EntryFile)
		}
		entryAbs = abs
		r.Project.DefaultFile = task.EntryFile
		if data, err := os.ReadFile(entryAbs); err == nil {
			code = string(data)
		}
	}

	feedback := ""
	for round := 1; round <= r.MaxRounds; round++ {
		res.Rounds = round
		r.Log.RoundStarted(round, r.MaxRounds)
		r.UI.Round(round, r.MaxRounds)

		genPrompt := prompt.Generation(prompt.GenerationInput{
			UseCase:      task.UseCase,
			Goals:        task.Goals,
			Language:     task.Language,
			PreviousCode: code,
			Feedback:     feedback,
			AsDiff:       code != "",
			ProjectFiles: r.listProjectFiles(task),
		})
		reply, err := r.chat(ctx, genPrompt)
		if err != nil {
			return res, fmt.Errorf("generation call: %w", err)
		}

		next, note, changed := r.applyReply(round, task, code, reply)
		if !changed {
			if next != "" {
				// a project diff can land partially; keep the buffer in
				// sync with the files on disk
				code = next
			}
			feedback = note
			r.UI.Warn(note)
			continue
		}
		code = next

		var path string
		if entryAbs != "" {
			path = entryAbs
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return res, fmt.Errorf("create entry directory: %w", err)
			}
		} else {
			path = filepath.Join(r.WorkDir, fmt.Sprintf("program_v%d%s", round, extFor(task.Language)))
			versions = append(versions, path)
		}
		if err := os.WriteFile(path, []byte(code), 0644); err != nil {
			return res, fmt.Errorf("persist program: %w", err)
		}
		res.Code = code
		res.ProgramPath = path

		runRes, err := r.Sandbox.RunFile(ctx, path, nil)
		if err != nil {
			return res, fmt.Errorf("sandbox run: %w", err)
		}
		r.Log.SandboxRun(string(runRes.Method), runRes.ExitCode, runRes.TimedOut, runRes.Duration)
		output := describeRun(runRes)
		r.UI.Output(output)

		review, err := r.chat(ctx, prompt.Review(task.UseCase, task.Goals, code, output))
		if err != nil {
			return res, fmt.Errorf("review call: %w", err)
		}
		res.Review = review

		verdict, err := r.chat(ctx, prompt.Verdict(review))
		if err != nil {
			return res, fmt.Errorf("verdict call: %w", err)
		}
		if prompt.IsApproval(verdict) {
			res.Success = true
			r.Log.RunFinished(true, round)
			return res, nil
		}
		feedback = review
	}

	r.Log.RunFinished(false, res.Rounds)
	return res, nil
}

// applyReply extracts the artifact from an LLM reply and produces the next
// program version. A diff that fails to locate leaves the code untouched
// and returns feedback for the next round.
func (r *Runner) applyReply(round int, task Task, code, reply string) (next, note string, changed bool) {
	if diff, found := diffBlock(reply); found {
		diffLines := patch.SplitLines(diff)
		if task.EntryFile != "" {
			return r.applyProjectDiff(round, task, diffLines)
		}
		if code == "" {
			return "", "The reply contained a diff but there is no program to patch yet. Send the complete program.", false
		}
		codeLines := patch.SplitLines(code)

		for fuzz := r.Fuzziness; fuzz <= patch.FuzzIgnoreComments; fuzz++ {
			patched, ok := patch.PatchCode(codeLines, diffLines, fuzz)
			if !ok {
				continue
			}
			r.Log.PatchApplied(round, len(patch.ExtractHunks(diffLines)), fuzz)
			next = patch.JoinLines(patched)
			r.UI.Diff(patch.RenderDiff(code, next, "program"))
			return next, "", true
		}
		r.Log.PatchFailed(round, patch.FuzzIgnoreComments)
		return "", "The diff did not apply: its context lines were not found in the current program. Resend either a corrected diff or the complete program.", false
	}

	block, found := markdown.FirstBlock(reply, task.Language, markdown.DefaultLanguage)
	if !found {
		return "", "The reply contained no code block. Put the program in a fenced code block.", false
	}
	if !strings.HasSuffix(block, "\n") {
		block += "\n"
	}
	return block, "", true
}

// listProjectFiles builds the prompt's workspace listing for project
// tasks.
func (r *Runner) listProjectFiles(task Task) []string {
	if task.EntryFile == "" || r.Files == nil {
		return nil
	}
	infos, err := r.Files.ListFiles("")
	if err != nil {
		r.Log.Error("list project files", err)
		return nil
	}
	out := make([]string, 0, len(infos))
	for _, fi := range infos {
		out = append(out, fmt.Sprintf("%s (%d lines)", fi.Path, fi.Lines))
	}
	return out
}

// applyProjectDiff routes a project-task diff through the project patcher.
// Files succeed or fail independently; the entry-file buffer is reloaded
// from disk either way so the next round sees what actually landed.
func (r *Runner) applyProjectDiff(round int, task Task, diffLines []string) (next, note string, changed bool) {
	results := r.Project.ApplyFiles(diffLines)
	if len(results) == 0 {
		return "", "The diff contained no applicable hunks. Resend either a corrected diff or the complete program.", false
	}

	var failures []string
	for _, fr := range results {
		if fr.Err != nil {
			failures = append(failures, fmt.Sprintf("%s (%s): %v", fr.Path, fr.Kind, fr.Err))
			continue
		}
		r.UI.Diff(fr.Diff)
	}

	if data, err := os.ReadFile(filepath.Join(r.Project.Root, task.EntryFile)); err == nil {
		next = string(data)
	}

	if len(failures) > 0 {
		r.Log.PatchFailed(round, r.Project.Fuzziness)
		return next, "Some files in the diff did not apply:\n" + strings.Join(failures, "\n") +
			"\nResend corrected diffs for these files.", false
	}
	r.Log.PatchApplied(round, len(patch.ExtractHunks(diffLines)), r.Project.Fuzziness)
	return next, "", true
}

// diffBlock finds a unified diff in the reply: either a block tagged
// diff/patch, or any block whose content classifies as one.
func diffBlock(reply string) (string, bool) {
	if diff, ok := markdown.FirstBlock(reply, "diff", "patch"); ok {
		return diff, true
	}
	blocks := markdown.ExtractCodeBlocks(reply)
	for _, contents := range blocks {
		for _, content := range contents {
			if patch.IsUnifiedDiff(patch.SplitLines(content)) {
				return content, true
			}
		}
	}
	return "", false
}

// chat sends one user message and returns the reply text, recording usage.
func (r *Runner) chat(ctx context.Context, userPrompt string) (string, error) {
	req := llm.ChatRequest{
		Model:       r.Model,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompt.System()},
			{Role: llm.RoleUser, Content: userPrompt},
		},
	}
	start := time.Now()
	resp, err := r.Gen.Chat(ctx, req)
	if err != nil {
		return "", err
	}
	elapsed := time.Since(start)
	if r.Usage != nil {
		r.Usage.Record(r.Model, resp.Usage, elapsed)
	}
	r.Log.LLMCall(r.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, elapsed)
	return resp.Text(), nil
}

// describeRun formats a sandbox result for the reviewer.
func describeRun(res *sandbox.Result) string {
	var b strings.Builder
	if res.TimedOut {
		b.WriteString("[the program timed out and was killed]\n")
	} else if res.ExitCode != 0 {
		fmt.Fprintf(&b, "[the program exited with code %d]\n", res.ExitCode)
	}
	b.WriteString(res.Stdout)
	if res.Stderr != "" {
		b.WriteString("\nstderr:\n")
		b.WriteString(res.Stderr)
	}
	return b.String()
}

func extFor(language string) string {
	if ext, ok := langExts[strings.ToLower(language)]; ok {
		return ext
	}
	return ".txt"
}
