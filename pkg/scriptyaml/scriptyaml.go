// Package scriptyaml loads declarative Parley scripts from YAML
// documents. The format covers the static subset of a script: text
// responses, exact/regexp/substring matchers, priorities and misc
// metadata. Anything that needs code (dynamic labels, custom
// processors) is added on the resulting domain.Script afterwards.
//
// Document shape:
//
//	start: greet:start
//	fallback: greet:start
//	flows:
//	  greet:
//	    start:
//	      response: ""
//	      transitions:
//	        - to: hello
//	          match: "Hi"
//	    hello:
//	      response: "Hi, how are you?"
//	      transitions:
//	        - to: farewell:bye
//	          pattern: "(?i)bye"
//	          priority: 2.0
package scriptyaml

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/parley/pkg/conditions"
	"github.com/aretw0/parley/pkg/domain"
)

// Document mirrors the YAML top level.
type Document struct {
	Start    string                        `mapstructure:"start"`
	Fallback string                        `mapstructure:"fallback"`
	Flows    map[string]map[string]NodeDef `mapstructure:"flows"`
}

// NodeDef mirrors one YAML node entry.
type NodeDef struct {
	Response    string          `mapstructure:"response"`
	Transitions []TransitionDef `mapstructure:"transitions"`
	Misc        map[string]any  `mapstructure:"misc"`
}

// TransitionDef mirrors one YAML transition entry. Exactly one of
// Match, Pattern and Contains may be set; none means "always".
type TransitionDef struct {
	To       string   `mapstructure:"to"`
	Priority *float64 `mapstructure:"priority"`
	Match    string   `mapstructure:"match"`
	Pattern  string   `mapstructure:"pattern"`
	Contains string   `mapstructure:"contains"`
}

// Bundle is the compiled result of a YAML script document.
type Bundle struct {
	Script   domain.Script
	Start    domain.Label
	Fallback domain.Label
}

// Load reads and parses a YAML script file.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return Parse(data)
}

// Parse compiles a YAML script document into a Bundle.
func Parse(data []byte) (*Bundle, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	var doc Document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid script document: %w", err)
	}

	if len(doc.Flows) == 0 {
		return nil, fmt.Errorf("script document declares no flows")
	}

	script := make(domain.Script, len(doc.Flows))
	for flowName, nodes := range doc.Flows {
		flow := make(domain.Flow, len(nodes))
		for nodeName, def := range nodes {
			node, err := compileNode(def)
			if err != nil {
				return nil, fmt.Errorf("node %s:%s: %w", flowName, nodeName, err)
			}
			flow[nodeName] = node
		}
		script[flowName] = flow
	}

	start, err := parseLabel(doc.Start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	bundle := &Bundle{Script: script, Start: start}
	if doc.Fallback != "" {
		fallback, err := parseLabel(doc.Fallback)
		if err != nil {
			return nil, fmt.Errorf("fallback: %w", err)
		}
		bundle.Fallback = fallback
	}
	return bundle, nil
}

func compileNode(def NodeDef) (*domain.Node, error) {
	node := &domain.Node{Misc: def.Misc}
	if def.Response != "" {
		node.Response = domain.Text(def.Response)
	}

	for i, t := range def.Transitions {
		if t.To == "" {
			return nil, fmt.Errorf("transition %d: missing 'to'", i)
		}

		target := parseTarget(t.To)
		if t.Priority != nil {
			target = target.WithPriority(*t.Priority)
		}

		cond, err := compileCondition(t)
		if err != nil {
			return nil, fmt.Errorf("transition %d: %w", i, err)
		}

		node.Transitions = append(node.Transitions, domain.Transition{
			Target:    target,
			Condition: cond,
		})
	}
	return node, nil
}

func compileCondition(t TransitionDef) (domain.Condition, error) {
	set := 0
	for _, v := range []string{t.Match, t.Pattern, t.Contains} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("at most one of match/pattern/contains may be set")
	}

	switch {
	case t.Match != "":
		return conditions.ExactMatch(t.Match), nil
	case t.Pattern != "":
		return conditions.Regexp(t.Pattern), nil
	case t.Contains != "":
		return conditions.Contains(t.Contains), nil
	default:
		return nil, nil // always
	}
}

// parseTarget reads a transition target: "node" stays in the current
// flow, "flow:node" is absolute.
func parseTarget(s string) domain.LabelRef {
	if flow, node, ok := strings.Cut(s, ":"); ok {
		return domain.ToFlow(flow, node)
	}
	return domain.To(s)
}

// parseLabel reads a fully qualified "flow:node" label.
func parseLabel(s string) (domain.Label, error) {
	flow, node, ok := strings.Cut(s, ":")
	if !ok || flow == "" || node == "" {
		return domain.Label{}, fmt.Errorf("label %q must be of the form flow:node", s)
	}
	return domain.NewLabel(flow, node), nil
}
