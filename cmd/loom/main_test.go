package main

import (
	"strings"
	"testing"
)

func TestRunCommandCompletesWorkflow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{
		"run",
		"--learner-id", "learner-1",
		"--name", "Ada",
		"--subject", "calculus",
		"--style", "visual",
		"--level", "2",
		"--weak", "limits",
	}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "package")

	sessionID := extractSessionID(t, out)

	statusOut, _, err := runCLI(t, []string{"status", sessionID}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, statusOut, "completed")
	requireContains(t, statusOut, "learner-1")

	sessionsOut, _, err := runCLI(t, []string{"sessions"}, env.configPath)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	requireContains(t, sessionsOut, sessionID)

	packagesOut, _, err := runCLI(t, []string{"packages"}, env.configPath)
	if err != nil {
		t.Fatalf("packages: %v", err)
	}
	requireContains(t, packagesOut, "learner-1")
}

func TestRunCommandRequiresSubject(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"run", "--name", "Ada"}, env.configPath)
	if err == nil {
		t.Fatal("run without subject should fail")
	}
	if !strings.Contains(err.Error(), "subject") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSessionsEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"sessions"}, env.configPath)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	requireContains(t, out, "No sessions recorded")
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"ID", "SCORE"},
		[][]string{{"a", "91"}, {"b"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	requireContains(t, out, "ID")
	requireContains(t, out, "SCORE")
	requireContains(t, out, "91")
	requireContains(t, out, "b")
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if out := renderTable(nil, nil, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func extractSessionID(t *testing.T, output string) string {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "Session ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Session "))
		}
	}
	t.Fatalf("no session id in output: %q", output)
	return ""
}
