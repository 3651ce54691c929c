// Package definition loads, validates and builds declarative flow
// definitions. A definition is a YAML document naming the steps of a
// pipeline; building it resolves every reference through the flowpipe core
// and yields a runnable pipeline.
package definition

import (
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Flow is the root of a declarative flow definition.
type Flow struct {
	Name        string    `yaml:"flow"`
	Description string    `yaml:"description"`
	Send        any       `yaml:"send"`
	Groups      GroupDefs `yaml:"groups"`
	Steps       []StepDef `yaml:"steps"`
}

// GroupDefs holds the flow-local group definitions in declaration order.
// yaml.v3 follows the YAML spec in tolerating repeated mapping keys, so the
// unmarshaller walks the mapping itself to keep order and spot duplicates.
type GroupDefs struct {
	Order      []string
	Defs       map[string][]StepDef
	duplicates []string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (g *GroupDefs) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return errors.New("groups must be a mapping of name to step list")
	}

	g.Defs = make(map[string][]StepDef)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var name string
		if err := value.Content[i].Decode(&name); err != nil {
			return errors.Wrap(err, "unable to decode group name")
		}

		var steps []StepDef
		if err := value.Content[i+1].Decode(&steps); err != nil {
			return errors.Wrapf(err, "unable to decode steps of group %q", name)
		}

		if _, ok := g.Defs[name]; ok {
			g.duplicates = append(g.duplicates, name)
		} else {
			g.Order = append(g.Order, name)
		}

		g.Defs[name] = steps
	}

	return nil
}

// Duplicates returns group names that were defined more than once; the last
// definition won.
func (g GroupDefs) Duplicates() []string { return g.duplicates }

// StepDef is one entry of a step list. In YAML it is either a bare string
// (the name of a registered step type or group) or a mapping selecting
// exactly one step kind.
type StepDef struct {
	Step      string        `yaml:"step"`
	Group     string        `yaml:"group"`
	Nested    []StepDef     `yaml:"nested"`
	Condition *ConditionDef `yaml:"condition"`
	Then      []StepDef     `yaml:"then"`
	Else      []StepDef     `yaml:"else"`
	Transform string        `yaml:"transform"`
	Retry     *RetryDef     `yaml:"retry"`
	RateLimit *RateLimitDef `yaml:"rate_limit"`
	Cache     *CacheDef     `yaml:"cache"`
	Batch     *BatchDef     `yaml:"batch"`
}

// UnmarshalYAML allows a step to be a plain name or a mapping.
func (s *StepDef) UnmarshalYAML(value *yaml.Node) error {
	var nameOnly string
	if err := value.Decode(&nameOnly); err == nil {
		s.Step = nameOnly

		return nil
	}

	type raw StepDef

	return value.Decode((*raw)(s))
}

// Step kinds, as reported by Kind.
const (
	KindStep      = "step"
	KindGroup     = "group"
	KindNested    = "nested"
	KindCondition = "condition"
	KindTransform = "transform"
	KindRetry     = "retry"
	KindRateLimit = "rate_limit"
	KindCache     = "cache"
	KindBatch     = "batch"
)

// Kind returns which step kind this definition selects. A definition that
// selects none, or more than one, is malformed.
func (s StepDef) Kind() (string, error) {
	kinds := make([]string, 0, 1)
	if s.Step != "" {
		kinds = append(kinds, KindStep)
	}
	if s.Group != "" {
		kinds = append(kinds, KindGroup)
	}
	if s.Nested != nil {
		kinds = append(kinds, KindNested)
	}
	if s.Condition != nil {
		kinds = append(kinds, KindCondition)
	}
	if s.Transform != "" {
		kinds = append(kinds, KindTransform)
	}
	if s.Retry != nil {
		kinds = append(kinds, KindRetry)
	}
	if s.RateLimit != nil {
		kinds = append(kinds, KindRateLimit)
	}
	if s.Cache != nil {
		kinds = append(kinds, KindCache)
	}
	if s.Batch != nil {
		kinds = append(kinds, KindBatch)
	}

	switch len(kinds) {
	case 0:
		return "", errors.New("step definition selects no kind")
	case 1:
		return kinds[0], nil
	default:
		return "", errors.Errorf("step definition selects multiple kinds: %v", kinds)
	}
}

// ConditionDef is the declarative form of a branching condition: a payload
// field (or the whole payload when Field is empty) compared with a fixed
// operator against a constant.
type ConditionDef struct {
	Field    string `yaml:"field"`
	Operator string `yaml:"operator"`
	Value    any    `yaml:"value"`
}

// RetryDef configures a declarative retry step.
type RetryDef struct {
	MaxAttempts int      `yaml:"max_attempts"`
	Delay       Duration `yaml:"delay"`
}

// RateLimitDef configures a declarative rate-limit step.
type RateLimitDef struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
	Wait      bool    `yaml:"wait"`
}

// CacheDef configures a declarative cache step. Key names the payload field
// the cache key is derived from; an empty key uses the whole payload.
type CacheDef struct {
	Key string   `yaml:"key"`
	TTL Duration `yaml:"ttl"`
}

// BatchDef configures a declarative batch step. The nested steps run once
// per chunk with the chunk as payload; without steps the batch only chunks
// and re-concatenates.
type BatchDef struct {
	Size  int       `yaml:"size"`
	Steps []StepDef `yaml:"steps"`
}

// Duration unmarshals from YAML strings such as "50ms" or "5m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "unable to parse duration %q", s)
	}

	*d = Duration(parsed)

	return nil
}

// Duration returns the standard time.Duration.
func (d Duration) Duration() time.Duration { return time.Duration(d) }
