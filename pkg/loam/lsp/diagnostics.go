// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package lsp bridges the core's own diagnostic messages to the Language
// Server Protocol, out of core per the module's external-interfaces
// section. It owns wire conversion only: severity mapping and the
// 1-based-to-0-based line/column translation LSP requires.
package lsp

import (
	"fmt"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/multierr"
)

// Severity is the core's own diagnostic severity, independent of LSP's
// wire representation.
type Severity uint8

const (
	// SeverityError is a hard failure: the module did not evaluate.
	SeverityError Severity = iota
	// SeverityWarning flags a likely mistake that did not stop evaluation.
	SeverityWarning
	// SeverityAdvice is a style or best-practice suggestion.
	SeverityAdvice
	// SeverityDisabled is a diagnostic a host configuration has suppressed,
	// surfaced only for visibility, never as an actionable warning.
	SeverityDisabled
)

// Span is a 1-based source range, matching how the core reports positions
// on the wire; FileWithContents converts it to LSP's 0-based Range.
type Span struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

// Message is one diagnostic the core's front-end produced while checking
// a file.
type Message struct {
	Span        Span
	Severity    Severity
	Name        string
	Description string
}

// Diagnoser is implemented by whatever front-end (parser, scope resolver,
// type-checker) can check a file's contents and report Messages. This
// package only wires its output to the LSP wire format; it never parses
// or checks anything itself.
type Diagnoser interface {
	Diagnose(path, contents string) ([]Message, error)
}

// Bridge adapts a Diagnoser to the LSP collaborator contract.
type Bridge struct {
	diagnoser Diagnoser
}

// NewBridge wraps d for LSP consumption.
func NewBridge(d Diagnoser) *Bridge {
	return &Bridge{diagnoser: d}
}

// FileWithContents checks fileURI's text with the wrapped Diagnoser and
// returns its findings as LSP Diagnostics. A message with a severity this
// package does not recognize is skipped and folded into the returned
// error via multierr, rather than silently dropped or aborting the whole
// batch.
func (b *Bridge) FileWithContents(fileURI, text string) ([]protocol.Diagnostic, error) {
	u, err := uri.Parse(fileURI)
	if err != nil {
		return nil, fmt.Errorf("lsp: invalid uri %q: %w", fileURI, err)
	}

	messages, err := b.diagnoser.Diagnose(u.Filename(), text)
	if err != nil {
		return nil, err
	}

	var errs error

	out := make([]protocol.Diagnostic, 0, len(messages))

	for _, m := range messages {
		sev, ok := wireSeverity(m.Severity)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("lsp: message %q has unrecognized severity %d", m.Name, m.Severity))
			continue
		}

		out = append(out, protocol.Diagnostic{
			Range:    wireRange(m.Span),
			Severity: sev,
			Source:   m.Name,
			Message:  m.Description,
		})
	}

	return out, errs
}

// wireSeverity maps the core's Error/Warning/Advice/Disabled onto LSP's
// Error/Warning/Hint/Information, as named in the external interfaces
// section: the mapping is 1:1 and fixed, never configurable per host.
func wireSeverity(s Severity) (protocol.DiagnosticSeverity, bool) {
	switch s {
	case SeverityError:
		return protocol.DiagnosticSeverityError, true
	case SeverityWarning:
		return protocol.DiagnosticSeverityWarning, true
	case SeverityAdvice:
		return protocol.DiagnosticSeverityHint, true
	case SeverityDisabled:
		return protocol.DiagnosticSeverityInformation, true
	default:
		return 0, false
	}
}

// wireRange converts a 1-based Span to LSP's 0-based Range.
func wireRange(s Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(s.StartLine - 1), Character: uint32(s.StartCol - 1)},
		End:   protocol.Position{Line: uint32(s.EndLine - 1), Character: uint32(s.EndCol - 1)},
	}
}
