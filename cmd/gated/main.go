package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/danielpatrickdp/discipline-gates/internal/checks"
	"github.com/danielpatrickdp/discipline-gates/internal/gate"
	"github.com/danielpatrickdp/discipline-gates/internal/orchestrator"
	"github.com/danielpatrickdp/discipline-gates/internal/prompt"
	"github.com/danielpatrickdp/discipline-gates/internal/session"
)

// #region main
func main() {
	env := checks.NewEnvValidator().
		Require("GATES_DB").
		Default("GATES_DB", "gates.db").
		Validate()
	if !env.Valid {
		log.Fatalf("environment invalid: missing=%v errors=%v", env.Missing, env.Errors)
	}
	dbPath := os.Getenv("GATES_DB")

	store, err := session.NewStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	orch, err := orchestrator.NewOrchestrator(store)
	if err != nil {
		log.Fatalf("failed to start orchestrator: %v", err)
	}

	fmt.Println("Discipline gates ready.")
	fmt.Printf("  DB: %s | enforcement: %v\n", dbPath, orch.Enabled())
	fmt.Println("Commands: feature: <text>, done, abandon, status, doc, hint, health, quit.")
	fmt.Println("Anything else is read as an evidence statement.")

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		handle(orch, line)
	}
}

// #endregion main

// #region handlers

func handle(orch *orchestrator.Orchestrator, line string) {
	switch {
	case strings.HasPrefix(strings.ToLower(line), "feature:"):
		startIncrement(orch, strings.TrimSpace(line[len("feature:"):]))

	case line == "done":
		rec, err := orch.Complete()
		if err != nil {
			fmt.Printf("cannot complete: %v\n", err)
			return
		}
		fmt.Printf("increment accepted: %s (%s)\n", rec.Feature, rec.IncrementID)
		notifyAccepted(rec.Feature)

	case line == "abandon":
		if err := orch.Abandon(); err != nil {
			fmt.Printf("cannot abandon: %v\n", err)
			return
		}
		fmt.Println("increment abandoned")

	case line == "status":
		rec, verdict, err := orch.Status()
		if err != nil {
			fmt.Printf("no active increment: %v\n", err)
			return
		}
		fmt.Print(prompt.StatusBlock(rec.Feature, rec.Context, verdict))

	case line == "doc":
		fmt.Print(prompt.InstructionDocument())

	case line == "health":
		runHealthCheck()

	case line == "hint":
		id, weight, err := orch.MostBlockingGate()
		if err != nil {
			fmt.Printf("hint unavailable: %v\n", err)
			return
		}
		if id == gate.GateNone {
			fmt.Println("not enough history yet")
			return
		}
		fmt.Printf("most blocking gate lately: %s (weight %.2f)\n", id, weight)

	default:
		submit(orch, line)
	}
}

func startIncrement(orch *orchestrator.Orchestrator, rest string) {
	feature, approachText := rest, ""
	if idx := strings.Index(rest, "|"); idx >= 0 {
		feature = strings.TrimSpace(rest[:idx])
		approachText = strings.TrimSpace(rest[idx+1:])
	}
	if feature == "" {
		fmt.Println("usage: feature: <description> [| <approach>]")
		return
	}

	res, err := orch.StartIncrement(feature, approachText)
	if err != nil {
		fmt.Printf("cannot start increment: %v\n", err)
		return
	}
	if res.CarryOver {
		fmt.Printf("approach already validated by a prior spike: %s\n", res.Learning)
	}
	fmt.Println(prompt.Response(res.Verdict))
}

func submit(orch *orchestrator.Orchestrator, statement string) {
	res, err := orch.Submit(statement)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if !res.Recognized {
		fmt.Println("no evidence recognized; still at:")
	}
	fmt.Println(prompt.Response(res.Verdict))
}

// #endregion handlers

// #region checks

// runHealthCheck probes the URLs in GATES_HEALTH_URLS (comma separated).
func runHealthCheck() {
	raw := os.Getenv("GATES_HEALTH_URLS")
	if raw == "" {
		fmt.Println("set GATES_HEALTH_URLS to a comma-separated URL list first")
		return
	}
	var urls []string
	for _, u := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(u); t != "" {
			urls = append(urls, t)
		}
	}

	for _, r := range checks.CheckHealth(urls, checks.DefaultHealthConfig()) {
		if r.Error != "" {
			fmt.Printf("  %-6s %s (%s)\n", r.Status, r.URL, r.Error)
			continue
		}
		fmt.Printf("  %-6s %s (%d, %dms)\n", r.Status, r.URL, r.StatusCode, r.ResponseTimeMs)
	}
}

// notifyAccepted sends an SMS when Twilio credentials are configured.
func notifyAccepted(feature string) {
	required := []string{"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_FROM", "TWILIO_TO"}
	if missing := checks.MissingEnv(required); len(missing) > 0 {
		return // notifications not configured
	}

	config := checks.DefaultSMSConfig(
		os.Getenv("TWILIO_ACCOUNT_SID"),
		os.Getenv("TWILIO_AUTH_TOKEN"),
		os.Getenv("TWILIO_FROM"),
	)
	msg := fmt.Sprintf("Gates passed, increment accepted: %s", feature)
	if err := checks.SendSMS(config, os.Getenv("TWILIO_TO"), msg); err != nil {
		log.Printf("[GATED] sms notify failed: %v", err)
	}
}

// #endregion checks
