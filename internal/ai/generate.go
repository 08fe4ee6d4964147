package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// DocKind identifies the planning documents 'taskflow generate' can produce.
type DocKind string

const (
	DocPRD          DocKind = "prd"
	DocArchitecture DocKind = "architecture"
	DocTasks        DocKind = "tasks"
)

// GenerateInput carries the project context fed to the prompts and manual
// templates.
type GenerateInput struct {
	ProjectName string
	Description string
	// PRD is the already-generated product document, fed into the
	// architecture and task prompts when available.
	PRD string
	// Architecture is fed into the task prompt when available.
	Architecture string
}

// Generator produces planning documents, via the AI provider when one is
// configured and via static manual templates otherwise.
type Generator struct {
	provider Provider
}

// NewGenerator wraps a provider. A nil provider is legal and forces the
// manual-template path for every document.
func NewGenerator(provider Provider) *Generator {
	return &Generator{provider: provider}
}

// Generate produces one planning document. Provider absence
// (ErrNotConfigured or nil provider) silently falls back to the manual
// template; provider failures are real errors.
func (g *Generator) Generate(ctx context.Context, kind DocKind, in GenerateInput) (string, bool, error) {
	if g.provider == nil {
		doc, err := manualDoc(kind, in)
		return doc, false, err
	}

	prompt, err := promptFor(kind, in)
	if err != nil {
		return "", false, err
	}
	text, err := g.provider.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			doc, merr := manualDoc(kind, in)
			return doc, false, merr
		}
		return "", false, fmt.Errorf("generating %s: %w", kind, err)
	}
	return strings.TrimSpace(text) + "\n", true, nil
}

func promptFor(kind DocKind, in GenerateInput) (string, error) {
	tmpl, ok := promptTemplates[kind]
	if !ok {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, in); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", kind, err)
	}
	return sb.String(), nil
}

func manualDoc(kind DocKind, in GenerateInput) (string, error) {
	tmpl, ok := manualTemplates[kind]
	if !ok {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, in); err != nil {
		return "", fmt.Errorf("rendering %s template: %w", kind, err)
	}
	return sb.String(), nil
}

var promptTemplates = map[DocKind]*template.Template{
	DocPRD: template.Must(template.New("prd").Parse(
		`You are writing a product requirements document for a software project.

**Project:** {{.ProjectName}}

**Description:**
{{.Description}}

Write a concise PRD in markdown with these sections: Overview, Goals,
Non-Goals, User Stories, and Success Criteria. Keep each section short and
concrete. Do not invent requirements beyond what the description implies.`)),

	DocArchitecture: template.Must(template.New("architecture").Parse(
		`You are writing an architecture document for a software project.

**Project:** {{.ProjectName}}

**PRD:**
{{.PRD}}

Write a concise architecture document in markdown with these sections:
System Overview, Components, Data Model, and Key Decisions. Ground every
component in a requirement from the PRD.`)),

	DocTasks: template.Must(template.New("tasks").Parse(
		`You are breaking a software project into features, stories, and tasks.

**Project:** {{.ProjectName}}

**PRD:**
{{.PRD}}

**Architecture:**
{{.Architecture}}

Produce a markdown breakdown. Features are numbered F1, F2, ...; stories
S1.1, S1.2, ...; tasks T1.1.1, T1.1.2, .... Each task gets a one-line
description and an optional dependency list referencing earlier task ids.
Keep tasks small enough to complete in one sitting.`)),
}

var manualTemplates = map[DocKind]*template.Template{
	DocPRD: template.Must(template.New("prd").Parse(
		`# {{.ProjectName}} - Product Requirements

## Overview

{{.Description}}

## Goals

- [Fill in the primary goals]

## Non-Goals

- [Fill in what is explicitly out of scope]

## User Stories

- As a [role], I want [capability] so that [benefit].

## Success Criteria

- [Fill in measurable outcomes]
`)),

	DocArchitecture: template.Must(template.New("architecture").Parse(
		`# {{.ProjectName}} - Architecture

## System Overview

[Describe the system at a high level.]

## Components

- [Component]: [responsibility]

## Data Model

[Describe the core entities and their relationships.]

## Key Decisions

- [Decision]: [rationale]
`)),

	DocTasks: template.Must(template.New("tasks").Parse(
		`# {{.ProjectName}} - Task Breakdown

## F1 - [Feature title]

### S1.1 - [Story title]

- T1.1.1 - [Task description]
- T1.1.2 - [Task description] (depends on: T1.1.1)
`)),
}
