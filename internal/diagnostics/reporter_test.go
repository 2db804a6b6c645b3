package diagnostics

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rolegate/bot/internal/store"
	"github.com/rolegate/bot/pkg/cmderr"
	"github.com/rolegate/bot/pkg/embed"
)

type mockReadiness struct {
	ready bool
}

func (m *mockReadiness) Ready() bool { return m.ready }

type mockChannel struct {
	embeds []embed.Embed
	errs   []error // popped per send
}

func (m *mockChannel) SendEmbed(ctx context.Context, e embed.Embed) error {
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return err
		}
	}
	m.embeds = append(m.embeds, e)
	return nil
}

type mockResolver struct {
	channels map[string]*mockChannel
}

func (m *mockResolver) Channel(id string) ChannelSender {
	ch, ok := m.channels[id]
	if !ok {
		return nil
	}
	return ch
}

type mockRecorder struct {
	entries []store.Entry
	err     error
}

func (m *mockRecorder) Record(ctx context.Context, e store.Entry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func testInvocation() Invocation {
	return Invocation{Command: "redeem", Actor: "user456", Guild: "Test Guild"}
}

func TestReport_DeliversBothEmbeds(t *testing.T) {
	channel := &mockChannel{}
	recorder := &mockRecorder{}
	r := NewReporter(Config{
		Readiness: &mockReadiness{ready: true},
		Resolver:  &mockResolver{channels: map[string]*mockChannel{"log-chan": channel}},
		ChannelID: "log-chan",
		Recorder:  recorder,
		Enabled:   true,
	})

	r.Report(context.Background(), testInvocation(), cmderr.DatabaseMissingData{Message: "missing guild row"})

	if len(channel.embeds) != 2 {
		t.Fatalf("embeds delivered = %d, want 2 (summary + traceback)", len(channel.embeds))
	}
	if channel.embeds[0].Title != "Command error!" {
		t.Errorf("first embed title = %q, want summary", channel.embeds[0].Title)
	}
	if !strings.Contains(channel.embeds[0].Description, "DatabaseMissingData") {
		t.Errorf("summary should carry the error kind: %q", channel.embeds[0].Description)
	}
	if !strings.Contains(channel.embeds[0].Description, "redeem") {
		t.Errorf("summary should carry the command name: %q", channel.embeds[0].Description)
	}
	if channel.embeds[1].Title != "Traceback" {
		t.Errorf("second embed title = %q, want traceback", channel.embeds[1].Title)
	}

	if len(recorder.entries) != 1 {
		t.Fatalf("recorded entries = %d, want 1", len(recorder.entries))
	}
	entry := recorder.entries[0]
	if entry.Kind != "DatabaseMissingData" || entry.Command != "redeem" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestReport_NotReadySkipsChannel(t *testing.T) {
	channel := &mockChannel{}
	r := NewReporter(Config{
		Readiness: &mockReadiness{ready: false},
		Resolver:  &mockResolver{channels: map[string]*mockChannel{"log-chan": channel}},
		ChannelID: "log-chan",
		Enabled:   true,
	})

	r.Report(context.Background(), testInvocation(), fmt.Errorf("boom"))

	if len(channel.embeds) != 0 {
		t.Error("no channel delivery before the framework is ready")
	}
}

func TestReport_UnresolvedChannelIsNotAnError(t *testing.T) {
	r := NewReporter(Config{
		Readiness: &mockReadiness{ready: true},
		Resolver:  &mockResolver{channels: map[string]*mockChannel{}},
		ChannelID: "deleted-chan",
		Enabled:   true,
	})

	// Process-level logging is the only guarantee; must not panic
	r.Report(context.Background(), testInvocation(), fmt.Errorf("boom"))
}

func TestReport_PartialDeliveryAccepted(t *testing.T) {
	channel := &mockChannel{errs: []error{nil, fmt.Errorf("rate limited")}}
	r := NewReporter(Config{
		Readiness: &mockReadiness{ready: true},
		Resolver:  &mockResolver{channels: map[string]*mockChannel{"log-chan": channel}},
		ChannelID: "log-chan",
		Enabled:   true,
	})

	r.Report(context.Background(), testInvocation(), fmt.Errorf("boom"))

	if len(channel.embeds) != 1 {
		t.Errorf("embeds delivered = %d, want 1 (summary only, no retry)", len(channel.embeds))
	}
}

func TestReport_RecorderFailureIsIsolated(t *testing.T) {
	channel := &mockChannel{}
	r := NewReporter(Config{
		Readiness: &mockReadiness{ready: true},
		Resolver:  &mockResolver{channels: map[string]*mockChannel{"log-chan": channel}},
		ChannelID: "log-chan",
		Recorder:  &mockRecorder{err: fmt.Errorf("disk full")},
		Enabled:   true,
	})

	r.Report(context.Background(), testInvocation(), fmt.Errorf("boom"))

	if len(channel.embeds) != 2 {
		t.Error("a store failure must not block channel delivery")
	}
}

func TestReport_Disabled(t *testing.T) {
	channel := &mockChannel{}
	recorder := &mockRecorder{}
	r := NewReporter(Config{
		Readiness: &mockReadiness{ready: true},
		Resolver:  &mockResolver{channels: map[string]*mockChannel{"log-chan": channel}},
		ChannelID: "log-chan",
		Recorder:  recorder,
		Enabled:   false,
	})

	r.Report(context.Background(), testInvocation(), fmt.Errorf("boom"))

	if len(channel.embeds) != 0 {
		t.Error("disabled reporter must not deliver to the channel")
	}
	if len(recorder.entries) != 1 {
		t.Error("disabled reporter still records escalations")
	}
}

func raiseBoom() error {
	return cmderr.WithStack(fmt.Errorf("boom"))
}

func TestReport_UsesAttachedStack(t *testing.T) {
	recorder := &mockRecorder{}
	r := NewReporter(Config{Recorder: recorder})

	r.Report(context.Background(), testInvocation(), raiseBoom())

	if len(recorder.entries) != 1 {
		t.Fatalf("recorded entries = %d, want 1", len(recorder.entries))
	}
	if !strings.Contains(recorder.entries[0].Traceback, "raiseBoom") {
		t.Errorf("traceback should point at the raise site:\n%s", recorder.entries[0].Traceback)
	}
}

func TestReport_NilCollaborators(t *testing.T) {
	r := NewReporter(Config{Enabled: true})

	// Only the process log is wired; must not panic
	r.Report(context.Background(), testInvocation(), fmt.Errorf("boom"))
}
