// Package prompt loads and renders agent task templates.
package prompt

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
)

// Variables holds the template variables for task rendering
type Variables struct {
	Team      string
	AgentName string
	Role      string
	Goal      string
	Skills    []string
	// Context is the team's static context from the team file
	Context map[string]string
}

// Loader handles loading and rendering task templates
type Loader struct {
	tasksDir string
}

// NewLoader creates a new task loader
// tasksDir is the directory containing <agent>.md task templates (optional)
func NewLoader(tasksDir string) *Loader {
	return &Loader{
		tasksDir: tasksDir,
	}
}

// Load loads a task template for the given agent
// Priority order:
// 1. Inline task (if provided)
// 2. Task file (if taskFile is provided)
// 3. <agent>.md from tasksDir (if it exists)
// 4. Empty, so the agent falls back to its goal
func (l *Loader) Load(agentName, inlineTask, taskFile string) (string, error) {
	// Priority 1: Inline task
	if inlineTask != "" {
		return inlineTask, nil
	}

	// Priority 2: Task file
	if taskFile != "" {
		content, err := os.ReadFile(taskFile)
		if err != nil {
			return "", fmt.Errorf("failed to read task file %s: %w", taskFile, err)
		}
		return string(content), nil
	}

	// Priority 3: Task from tasksDir
	if l.tasksDir != "" {
		taskPath := filepath.Join(l.tasksDir, agentName+".md")
		if content, err := os.ReadFile(taskPath); err == nil {
			return string(content), nil
		}
	}

	return "", nil
}

// Render renders a task template with the given variables
func (l *Loader) Render(taskTemplate string, vars Variables) (string, error) {
	// Convert old-style placeholders to Go template syntax
	task := convertLegacyPlaceholders(taskTemplate)

	// Use missingkey=error to catch typos in template variables
	tmpl, err := template.New("task").
		Option("missingkey=error").
		Funcs(template.FuncMap{
			"join": strings.Join,
		}).Parse(task)
	if err != nil {
		return "", fmt.Errorf("failed to parse task template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to render task template: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// LoadAndRender loads and renders a task in one step. An agent with no
// task source gets an empty task.
func (l *Loader) LoadAndRender(agentName, inlineTask, taskFile string, vars Variables) (string, error) {
	tmpl, err := l.Load(agentName, inlineTask, taskFile)
	if err != nil || tmpl == "" {
		return "", err
	}
	return l.Render(tmpl, vars)
}

// convertLegacyPlaceholders converts old {placeholder} style to {{.Field}} style
func convertLegacyPlaceholders(task string) string {
	replacements := map[string]string{
		"{agent_name}": "{{.AgentName}}",
		"{role}":       "{{.Role}}",
		"{goal}":       "{{.Goal}}",
		"{team}":       "{{.Team}}",
	}

	result := task
	for old, new := range replacements {
		result = strings.ReplaceAll(result, old, new)
	}
	return result
}

// ListAvailable returns the agents that have a template in tasksDir, sorted
func (l *Loader) ListAvailable() ([]string, error) {
	if l.tasksDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(l.tasksDir)
	if err != nil {
		return nil, err
	}

	var result []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
			result = append(result, strings.TrimSuffix(entry.Name(), ".md"))
		}
	}
	sort.Strings(result)
	return result, nil
}
