package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rahulj/hintloop/internal/clarify"
	"github.com/rahulj/hintloop/internal/hint"
	"github.com/rahulj/hintloop/internal/llm"
	"github.com/rahulj/hintloop/internal/session"
	"github.com/rahulj/hintloop/internal/store"
	"github.com/rahulj/hintloop/internal/tutor"
)

// hintSources is the tier order used by reports.
var hintSources = []hint.Source{
	hint.SourceInstant,
	hint.SourceCached,
	hint.SourceGenerated,
	hint.SourceFallback,
	hint.SourceEmergency,
}

// runApp opens the store, builds the service, and drives an interactive
// session over stdin.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := buildLogger(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	deps := tutor.Deps{
		Struggles:  st.StruggleRepo(),
		Difficulty: st.DifficultyRepo(),
		HintEvents: st.HintEventRepo(),
		LLMEvents:  st.LLMEventRepo(),
		Logger:     log,
	}
	if llmCfg, ok := llm.DiscoverConfig(); ok {
		provider, err := llm.NewProvider(ctx, llmCfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Generated hints will be unavailable.")
		} else {
			deps.Provider = provider
		}
	}

	svc := tutor.New(cfg, deps)
	svc.Start()
	defer svc.Stop()

	err = runLoop(ctx, svc)
	printSessionSummary(svc)
	return err
}

// printSessionSummary reports the rolling resolution window for this
// process, one line per tier.
func printSessionSummary(svc *tutor.Service) {
	stats := svc.HintMetrics().BySource()
	if len(stats) == 0 {
		return
	}
	fmt.Println("This session:")
	for _, source := range hintSources {
		st, ok := stats[source]
		if !ok {
			continue
		}
		fmt.Printf("  %-10s %4d hints  avg %s\n", source, st.Count, st.AvgLatency.Round(time.Millisecond))
	}
}

// runLoop is the line-oriented conversation driver. Problems come in as
// plain text; everything after segmentation is a clarification turn.
func runLoop(ctx context.Context, svc *tutor.Service) error {
	const userID = "local"

	fmt.Println("Paste a math problem (or several, numbered). Type 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)

	inConversation := false
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		if !inConversation {
			in, err := svc.SubmitText(ctx, userID, line)
			if err != nil {
				fmt.Println("Sorry, I couldn't read that. Try again.")
				continue
			}
			printIntake(in)
			inConversation = true
			continue
		}

		turn := svc.HandleTurn(ctx, userID, line)
		printTurn(turn)
		if turn.Intent == clarify.IntentMenuReset {
			inConversation = false
		}
	}
}

func printIntake(in *tutor.Intake) {
	switch {
	case len(in.Questions) == 0:
		fmt.Println("I couldn't find a question in that. Could you paste it again?")
	case in.Stage == session.StageQuestionSelection:
		fmt.Println("I found these questions:")
		for _, q := range in.Questions {
			fmt.Printf("  %d. %s\n", q.Ordinal, q.Text)
		}
		fmt.Println("Which one are you working on? (enter a number)")
	default:
		q := in.Questions[0]
		fmt.Printf("Got it: %s\n", q.Text)
		fmt.Println("What part is giving you trouble?")
	}
}

func printTurn(t *tutor.Turn) {
	switch t.Intent {
	case clarify.IntentSelectQuestion:
		fmt.Println("Please enter the number of the question you're working on.")
	case clarify.IntentProbe:
		if t.Selected != nil && t.Stage == session.StagePainpointExcavation && t.AttemptsMade == 0 {
			fmt.Printf("Working on: %s\n", t.Selected.Text)
		}
		fmt.Println(probeText(t.Probe))
	case clarify.IntentConfirm:
		fmt.Printf("So the tricky part is %s. Did I get that right? (yes/no)\n", t.Struggle.Description)
	case clarify.IntentHintReady:
		if t.Hint != nil {
			fmt.Println()
			fmt.Println(t.Hint.Text)
			if t.Hint.WorkedExample != "" {
				fmt.Println("For example:", t.Hint.WorkedExample)
			}
			fmt.Println()
		}
		fmt.Println("Give it another try! Ask again if you're still stuck.")
	case clarify.IntentDecline:
		fmt.Println("I'm having trouble pinning down where you're stuck.")
		fmt.Println("You can try describing it once more ('retry') or go back to the menu ('menu').")
	case clarify.IntentMenuReset:
		fmt.Println("Okay, back to the start. Paste a problem whenever you're ready.")
	}
}

// probeText maps probe identifiers to user-facing questions. Unknown
// probes get the generic prompt.
func probeText(probe string) string {
	switch probe {
	case "probe_isolate":
		return "Is it the part where you get x by itself?"
	case "probe_step":
		return "Which step are you on when you get stuck?"
	case "probe_where_stuck":
		return "Can you point at the exact part that trips you up?"
	default:
		return "Can you tell me a bit more about what's confusing?"
	}
}
