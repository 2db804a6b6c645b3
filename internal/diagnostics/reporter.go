// Package diagnostics delivers escalated command errors to operators: the
// process-level critical log always, the configured log channel when the
// framework is ready, and the escalation store in between.
package diagnostics

import (
	"context"
	"fmt"

	"github.com/rolegate/bot/internal/store"
	"github.com/rolegate/bot/pkg/cmderr"
	"github.com/rolegate/bot/pkg/embed"
	"github.com/rolegate/bot/pkg/logger"
)

// Readiness reports whether the framework is fully connected.
type Readiness interface {
	Ready() bool
}

// ChannelSender delivers an embed to one channel.
type ChannelSender interface {
	SendEmbed(ctx context.Context, e embed.Embed) error
}

// ChannelResolver resolves a channel identifier to a sender. It returns
// nil when the channel is not configured or has been deleted.
type ChannelResolver interface {
	Channel(id string) ChannelSender
}

// Recorder persists escalations. Satisfied by *store.Store.
type Recorder interface {
	Record(ctx context.Context, e store.Entry) error
}

// Invocation carries the command metadata attached to a report.
type Invocation struct {
	Command string
	Actor   string
	Guild   string
}

// Reporter escalates command errors to the operator-facing sinks
type Reporter struct {
	readiness Readiness
	resolver  ChannelResolver
	channelID string
	recorder  Recorder
	enabled   bool
	log       *logger.Logger
}

// Config configures the reporter
type Config struct {
	Readiness Readiness
	Resolver  ChannelResolver
	ChannelID string
	Recorder  Recorder
	Enabled   bool
}

// NewReporter creates a reporter. Only the process-level log is required;
// every other sink is best effort.
func NewReporter(cfg Config) *Reporter {
	return &Reporter{
		readiness: cfg.Readiness,
		resolver:  cfg.Resolver,
		channelID: cfg.ChannelID,
		recorder:  cfg.Recorder,
		enabled:   cfg.Enabled,
		log:       logger.Global().WithComponent("diagnostics"),
	}
}

// Report escalates a command error. It never fails: the critical log is
// the only guaranteed sink, store and channel delivery are best effort,
// and a failure in any of them must not reach the user-facing reply path.
func (r *Reporter) Report(ctx context.Context, inv Invocation, raised error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Critical("diagnostic report panicked", "panic", fmt.Sprint(rec))
		}
	}()

	cause := cmderr.Cause(raised)
	kind := cmderr.TypeName(cause)
	summary := fmt.Sprintf("Ignoring %s exception in command '%s': %v", kind, inv.Command, cause)

	// Prefer the stack attached where the error was raised; fall back to
	// capturing here so the traceback sinks never go empty.
	frames := cmderr.StackOf(raised)
	if len(frames) == 0 {
		frames = cmderr.CaptureStack(1)
	}
	traceback := cmderr.FormatStack(frames)

	r.log.Critical(summary)
	r.log.Critical(traceback)

	if r.recorder != nil {
		if err := r.recorder.Record(ctx, store.Entry{
			Kind:      kind,
			Command:   inv.Command,
			Actor:     inv.Actor,
			Guild:     inv.Guild,
			Message:   raised.Error(),
			Traceback: traceback,
		}); err != nil {
			r.log.Error("failed to record escalation", "error", err)
		}
	}

	if !r.enabled || r.readiness == nil || !r.readiness.Ready() || r.resolver == nil {
		return
	}

	channel := r.resolver.Channel(r.channelID)
	if channel == nil {
		// Channel not configured or deleted; process log already has it
		return
	}

	// Two independent sends. Partial delivery is acceptable and not retried.
	if err := channel.SendEmbed(ctx, embed.LogEmbed(summary, inv.Actor, inv.Guild, inv.Command)); err != nil {
		r.log.Error("failed to deliver summary embed", "error", err)
	}
	if err := channel.SendEmbed(ctx, embed.TracebackEmbed(traceback)); err != nil {
		r.log.Error("failed to deliver traceback embed", "error", err)
	}
}
