package graph

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/weft/weft/template"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// JSONEncoder encodes and decodes the dependency graph and the frozen output
// registries to/from json. Round-tripping a manager through the encoder
// reproduces identical resolution behavior.
type JSONEncoder struct{}

// Prevent accidentally using json.Marshal on the manager.

// MarshalJSON panics.
// Instead, use JSONEncoder.Marshal() to marshal a manager.
func (m *Manager) MarshalJSON() ([]byte, error) { panic("Use JSONEncoder.Marshal() to marshal manager") }

// UnmarshalJSON panics.
// Instead, use JSONEncoder.Unmarshal() to unmarshal a manager.
func (m *Manager) UnmarshalJSON([]byte) error { panic("Use JSONEncoder.Unmarshal() to unmarshal manager") }

// Marshal marshals the manager state into a json encoded byte slice.
//
// The output is deterministic: templates are keyed by id, resources are
// sorted by type and name, edges keep insertion order.
func (enc JSONEncoder) Marshal(m *Manager) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := jsonSnapshot{
		Templates: make(map[string]jsonTemplate),
	}
	for _, id := range m.outputs.Templates() {
		t := jsonTemplate{Frozen: m.outputs.Frozen(id)}
		for _, ref := range m.outputs.References(id) {
			jr := jsonResource{
				Type:    ref.Type(),
				Name:    ref.Name(),
				Outputs: ref.Outputs(),
			}
			if !ref.Attrs().IsNull() {
				ty, err := ctyjson.MarshalType(ref.Attrs().Type())
				if err != nil {
					return nil, errors.Wrapf(err, "marshal attr type for %s", ref)
				}
				val, err := ctyjson.Marshal(ref.Attrs(), ref.Attrs().Type())
				if err != nil {
					return nil, errors.Wrapf(err, "marshal attrs for %s", ref)
				}
				jr.Attrs = &jsonAttrs{Type: ty, Value: val}
			}
			t.Resources = append(t.Resources, jr)
		}
		out.Templates[id] = t
	}
	for _, l := range m.lines {
		out.Edges = append(out.Edges, jsonEdge{
			Consumer: l.consumer,
			Producer: l.producer,
			Output:   l.output,
			State:    l.state.String(),
		})
	}
	return json.Marshal(out)
}

// Unmarshal decodes a json encoded manager, reconstructing the output
// registries, the edges and their resolution states.
func (enc JSONEncoder) Unmarshal(b []byte) (*Manager, error) {
	var in jsonSnapshot
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, errors.Wrap(err, "unmarshal snapshot")
	}

	outputs := template.NewOutputs()
	for id, t := range in.Templates {
		for _, jr := range t.Resources {
			attrs := cty.NilVal
			if jr.Attrs != nil {
				ty, err := ctyjson.UnmarshalType(jr.Attrs.Type)
				if err != nil {
					return nil, errors.Wrapf(err, "unmarshal attr type for %s.%s", jr.Type, jr.Name)
				}
				val, err := ctyjson.Unmarshal(jr.Attrs.Value, ty)
				if err != nil {
					return nil, errors.Wrapf(err, "unmarshal attrs for %s.%s", jr.Type, jr.Name)
				}
				attrs = val
			}
			if _, err := outputs.Declare(id, jr.Type, jr.Name, attrs, jr.Outputs); err != nil {
				return nil, errors.Wrapf(err, "declare %s.%s", jr.Type, jr.Name)
			}
		}
		if t.Frozen {
			outputs.Freeze(id)
		}
	}

	m := New(outputs)
	for i, e := range in.Edges {
		state, ok := parseState(e.State)
		if !ok {
			return nil, errors.Errorf("edge %d: unknown state %q", i, e.State)
		}
		from := m.node(e.Consumer)
		to := m.node(e.Producer)
		l := &line{
			Line:     m.graph.NewLine(from, to),
			consumer: e.Consumer,
			producer: e.Producer,
			output:   e.Output,
			state:    state,
		}
		m.graph.SetLine(l)
		m.lines = append(m.lines, l)
	}
	return m, nil
}

func parseState(str string) (EdgeState, bool) {
	switch str {
	case "pending":
		return Pending, true
	case "resolved":
		return Resolved, true
	case "failed":
		return Failed, true
	default:
		return 0, false
	}
}

type jsonSnapshot struct {
	Templates map[string]jsonTemplate `json:"templates"`
	Edges     []jsonEdge              `json:"edges,omitempty"`
}

type jsonTemplate struct {
	Frozen    bool           `json:"frozen"`
	Resources []jsonResource `json:"res,omitempty"`
}

type jsonResource struct {
	Type    string     `json:"type"`
	Name    string     `json:"name"`
	Attrs   *jsonAttrs `json:"attrs,omitempty"`
	Outputs []string   `json:"outputs,omitempty"`
}

type jsonAttrs struct {
	Type  json.RawMessage `json:"type"`
	Value json.RawMessage `json:"value"`
}

type jsonEdge struct {
	Consumer string `json:"consumer"`
	Producer string `json:"producer"`
	Output   string `json:"output"`
	State    string `json:"state"`
}
