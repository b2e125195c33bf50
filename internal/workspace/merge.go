package workspace

import (
	"maps"
	"slices"
)

// Merge combines an incoming entry into an existing one. Values already
// present in existing win: targets, options, outputs and configurations that
// were customized by hand are never overwritten, only missing ones are added.
// Neither argument is modified.
func Merge(existing, incoming *Entry) *Entry {
	if existing == nil {
		return incoming.clone()
	}
	out := existing.clone()

	if out.Root == "" {
		out.Root = incoming.Root
	}
	if out.SourceRoot == "" {
		out.SourceRoot = incoming.SourceRoot
	}
	if out.ProjectType == "" {
		out.ProjectType = incoming.ProjectType
	}

	for _, tag := range incoming.Tags {
		if !slices.Contains(out.Tags, tag) {
			out.Tags = append(out.Tags, tag)
		}
	}

	for name, target := range incoming.Targets {
		current, ok := out.Targets[name]
		if !ok {
			if out.Targets == nil {
				out.Targets = make(map[string]TargetSpec)
			}
			out.Targets[name] = target.clone()
			continue
		}
		out.Targets[name] = mergeTarget(current, target)
	}

	return out
}

func mergeTarget(current, incoming TargetSpec) TargetSpec {
	if current.Executor == "" {
		current.Executor = incoming.Executor
	}
	for key, value := range incoming.Options {
		if _, ok := current.Options[key]; !ok {
			if current.Options == nil {
				current.Options = make(map[string]any)
			}
			current.Options[key] = value
		}
	}
	if len(current.Outputs) == 0 && len(incoming.Outputs) > 0 {
		current.Outputs = slices.Clone(incoming.Outputs)
	}
	for name, cfg := range incoming.Configurations {
		if _, ok := current.Configurations[name]; !ok {
			if current.Configurations == nil {
				current.Configurations = make(map[string]map[string]any)
			}
			current.Configurations[name] = maps.Clone(cfg)
		}
	}
	return current
}

func (e *Entry) clone() *Entry {
	if e == nil {
		return nil
	}
	out := *e
	out.Tags = slices.Clone(e.Tags)
	if e.Targets != nil {
		out.Targets = make(map[string]TargetSpec, len(e.Targets))
		for name, t := range e.Targets {
			out.Targets[name] = t.clone()
		}
	}
	return &out
}

func (t TargetSpec) clone() TargetSpec {
	out := t
	out.Options = maps.Clone(t.Options)
	out.Outputs = slices.Clone(t.Outputs)
	if t.Configurations != nil {
		out.Configurations = make(map[string]map[string]any, len(t.Configurations))
		for name, cfg := range t.Configurations {
			out.Configurations[name] = maps.Clone(cfg)
		}
	}
	return out
}
