package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/forgeloop/forgeloop/internal/agent"
	"github.com/forgeloop/forgeloop/internal/config"
	"github.com/forgeloop/forgeloop/internal/llm"
	"github.com/forgeloop/forgeloop/internal/patch"
	"github.com/forgeloop/forgeloop/internal/project"
	"github.com/forgeloop/forgeloop/internal/sandbox"
	"github.com/forgeloop/forgeloop/internal/ui"
	"github.com/forgeloop/forgeloop/internal/workspace"
)

// Version info set by ldflags at build time
var (
	version    = "dev"
	commitHash = "dev"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	task := flag.String("task", "", "use case the generated program must fulfill")
	goals := flag.String("goals", "", "semicolon-separated goals for the program")
	language := flag.String("language", "python", "language of the generated program")
	entry := flag.String("entry", "", "entry file for a project task (relative to the workspace)")
	workDir := flag.String("workspace", "", "override workspace root")
	rounds := flag.Int("rounds", 0, "override max generation rounds")
	fuzziness := flag.Int("fuzziness", 0, "starting patch match tolerance (0=exact, 1=ignore trailing comments)")
	logFile := flag.String("log", "forgeloop.log", "log file path (empty to disable)")
	quiet := flag.Bool("q", false, "quiet mode: only print the final result")
	showVersion := flag.Bool("version", false, "show version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s-%s\n", version, commitHash)
		return
	}
	if *task == "" {
		log.Fatal("a task is required: -task \"describe the program to build\"")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = config.Default()
	}
	if *workDir != "" {
		cfg.Workspace.Root = *workDir
	}
	if cfg.Workspace.Root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			log.Fatalf("Failed to get working directory: %v", err)
		}
		cfg.Workspace.Root = cwd
	}
	if *rounds > 0 {
		cfg.Agent.MaxRounds = *rounds
	}
	if *fuzziness > 0 {
		cfg.Agent.Fuzziness = *fuzziness
	}

	if err := os.MkdirAll(cfg.Workspace.Root, 0755); err != nil {
		log.Fatalf("Failed to create workspace: %v", err)
	}
	lock, err := workspace.AcquireLock(cfg.Workspace.Root)
	if err != nil {
		log.Fatalf("Failed to lock workspace: %v", err)
	}
	defer lock.Release()

	logger, err := agent.NewLogger(*logFile)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logger.Close()

	writer := ui.NewWriter()
	writer.SetQuiet(*quiet)

	client := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey)
	usage := llm.NewTracker()

	runner := &agent.Runner{
		Gen:         client,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Sandbox: &sandbox.Runner{
			Interpreter: cfg.Sandbox.Interpreter,
			Timeout:     time.Duration(cfg.Sandbox.TimeoutSeconds) * time.Second,
			Method:      sandbox.Method(cfg.Sandbox.Method),
			Caps:        sandbox.Probe(),
		},
		Log:           logger,
		UI:            writer,
		Usage:         usage,
		Project:       patch.NewProjectPatcher(cfg.Workspace.Root, cfg.Agent.Fuzziness, logger.Zap()),
		Files:         project.New(cfg.Workspace.Root),
		WorkDir:       cfg.Workspace.Root,
		MaxRounds:     cfg.Agent.MaxRounds,
		Fuzziness:     cfg.Agent.Fuzziness,
		KeepArtifacts: cfg.Agent.KeepArtifacts,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := runner.Run(ctx, agent.Task{
		UseCase:   *task,
		Goals:     splitGoals(*goals),
		Language:  *language,
		EntryFile: *entry,
	})
	if err != nil {
		logger.Error("run failed", err)
		writer.Error(err.Error())
		os.Exit(1)
	}

	if result.Success {
		writer.Result(fmt.Sprintf("goals met after %d round(s): %s", result.Rounds, result.ProgramPath))
	} else {
		writer.Result(fmt.Sprintf("round budget exhausted after %d round(s); last version: %s", result.Rounds, result.ProgramPath))
		if result.Review != "" {
			writer.Result("last review:\n" + result.Review)
		}
	}
	writer.Result(usage.Summary())

	if !result.Success {
		os.Exit(2)
	}
}

func splitGoals(s string) []string {
	if s == "" {
		return nil
	}
	var goals []string
	for _, g := range strings.Split(s, ";") {
		if g = strings.TrimSpace(g); g != "" {
			goals = append(goals, g)
		}
	}
	return goals
}
