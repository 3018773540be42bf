package engine

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"text/template"

	"bodygoal/internal/artifact"
	"bodygoal/internal/llm"
	"bodygoal/internal/profile"
)

//go:embed full_plan_system.md
var fullPlanSystemTmpl string

//go:embed full_plan_user.md
var fullPlanUserTmpl string

//go:embed suggestion_system.md
var suggestionSystemTmpl string

//go:embed suggestion_user.md
var suggestionUserTmpl string

// Snapshot is a small category-specific view of the user's current data
// (today's calories vs. target, workouts logged, latest weight) embedded
// into a generation request.
type Snapshot map[string]string

type promptData struct {
	Profile       profile.Biometrics
	CalorieTarget int
	Category      string
	Snapshot      []snapshotEntry
}

type snapshotEntry struct {
	Key   string
	Value string
}

// buildPrompt turns a (profile, snapshot, artifact type) tuple into a
// structured generation request. One builder serves every artifact type.
// Snapshot keys are rendered in sorted order so that identical inputs
// always produce an identical request.
func buildPrompt(b profile.Biometrics, snap Snapshot, typ artifact.Type, calorieTarget int) (llm.Prompt, error) {
	data := promptData{
		Profile:       b,
		CalorieTarget: calorieTarget,
		Category:      typ.Category(),
		Snapshot:      sortedEntries(snap),
	}

	systemTmpl, userTmpl := suggestionSystemTmpl, suggestionUserTmpl
	if typ == artifact.TypeFullPlan {
		systemTmpl, userTmpl = fullPlanSystemTmpl, fullPlanUserTmpl
	}

	system, err := renderTemplate("system", systemTmpl, data)
	if err != nil {
		return llm.Prompt{}, err
	}
	user, err := renderTemplate("user", userTmpl, data)
	if err != nil {
		return llm.Prompt{}, err
	}

	return llm.Prompt{System: system, User: user}, nil
}

func renderTemplate(name, text string, data promptData) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s prompt template: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", name, err)
	}
	return buf.String(), nil
}

func sortedEntries(snap Snapshot) []snapshotEntry {
	if len(snap) == 0 {
		return nil
	}
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]snapshotEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, snapshotEntry{Key: k, Value: snap[k]})
	}
	return entries
}
