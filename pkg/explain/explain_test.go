package explain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/circuitdraw/pkg/netlist"
)

type fakeGenerator struct {
	reply  string
	err    error
	system string
	user   string
}

func (f *fakeGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.reply, f.err
}

func TestTemplate(t *testing.T) {
	tests := []struct {
		name string
		nl   *netlist.Netlist
		want string
	}{
		{"nil", nil, Generic},
		{"own explanation", &netlist.Netlist{Explanation: "  wire it up  "}, "wire it up"},
		{"esp32", &netlist.Netlist{Components: []netlist.Component{{ID: "U1", Type: "microcontroller", Model: "ESP32-CAM"}}}, ESP32Guide},
		{"generic", &netlist.Netlist{Components: []netlist.Component{{ID: "R1", Type: "resistor"}}}, Generic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Template(tt.nl); got != tt.want {
				t.Errorf("Template() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExplainUsesModel(t *testing.T) {
	gen := &fakeGenerator{reply: "1) Connect V1.\n2) Done."}
	nl := &netlist.Netlist{Components: []netlist.Component{{ID: "V1", Type: "voltage_source"}}}

	got, err := New(gen, nil).Explain(context.Background(), "a battery", nl)
	if err != nil {
		t.Fatal(err)
	}
	if got != gen.reply {
		t.Errorf("Explain() = %q", got)
	}
	if !strings.Contains(gen.system, "a battery") {
		t.Errorf("request missing from system prompt: %q", gen.system)
	}
	if !strings.HasPrefix(gen.user, `Netlist: {"components":[{"id":"V1"`) {
		t.Errorf("user prompt = %q", gen.user)
	}
}

func TestExplainFallsBack(t *testing.T) {
	nl := &netlist.Netlist{Explanation: "from netlist"}
	for name, w := range map[string]*Writer{
		"no model":     New(nil, nil),
		"model failed": New(&fakeGenerator{err: errors.New("boom")}, nil),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := w.Explain(context.Background(), "x", nl)
			if err != nil {
				t.Fatal(err)
			}
			if got != "from netlist" {
				t.Errorf("Explain() = %q", got)
			}
		})
	}
}

func TestExplainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := New(&fakeGenerator{err: context.Canceled}, nil)
	if _, err := w.Explain(ctx, "x", &netlist.Netlist{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
