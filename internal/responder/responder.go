// Package responder is the terminal handler for command-dispatch errors.
// It classifies a raised error, sends the user-facing reply, and escalates
// database-integrity violations and unclassified errors to diagnostics.
package responder

import (
	"context"
	"fmt"
	"math"

	"github.com/rolegate/bot/internal/diagnostics"
	"github.com/rolegate/bot/pkg/cmderr"
	"github.com/rolegate/bot/pkg/logger"
)

// InvocationContext is the framework's per-invocation handle.
type InvocationContext interface {
	// AuthorID returns the invoking actor's identifier
	AuthorID() string

	// GuildName returns the guild the command ran in, empty for DMs
	GuildName() string

	// CommandName returns the name of the invoked command
	CommandName() string

	// HasLocalHandler reports whether the command declares its own error
	// handler, in which case this responder must defer entirely
	HasLocalHandler() bool

	// Send replies in the invoking channel
	Send(ctx context.Context, text string) error

	// SendDM sends a direct message to the invoking actor
	SendDM(ctx context.Context, text string) error

	// Reinvoke re-runs the original command, bypassing error handling
	Reinvoke(ctx context.Context) error
}

// DeveloperRegistry answers cooldown-bypass lookups.
type DeveloperRegistry interface {
	IsDeveloper(id string) bool
}

// Escalator delivers escalated errors to diagnostics. Satisfied by
// *diagnostics.Reporter.
type Escalator interface {
	Report(ctx context.Context, inv diagnostics.Invocation, raised error)
}

// ErrorHook is the framework's global error-event stream.
type ErrorHook interface {
	OnCommandError(handler func(ctx context.Context, inv InvocationContext, raised error))
}

// Responder is the centralized command-error handler. It holds no state
// across invocations; each error is handled independently.
type Responder struct {
	developers DeveloperRegistry
	diag       Escalator
	metrics    *Metrics
	log        *logger.Logger
}

// New creates a responder with explicit collaborators.
func New(developers DeveloperRegistry, diag Escalator) *Responder {
	return &Responder{
		developers: developers,
		diag:       diag,
		metrics:    NewMetrics(),
		log:        logger.Global().WithComponent("responder"),
	}
}

// Register plugs the responder into the framework's error-event stream.
func (r *Responder) Register(hook ErrorHook) {
	hook.OnCommandError(r.Handle)
}

// Handle classifies raised and produces the user-facing reply. It is the
// terminal handler: it never re-raises, and commands with their own error
// handler make it a total no-op.
func (r *Responder) Handle(ctx context.Context, inv InvocationContext, raised error) {
	if inv.HasLocalHandler() {
		return
	}

	// Classification looks through wrapping; escalation keeps the full
	// chain so an attached stack survives to diagnostics.
	cause := cmderr.Cause(raised)
	r.metrics.RecordError(cmderr.TypeName(cause))

	switch e := cause.(type) {
	case cmderr.CommandNotFound:
		r.send(ctx, inv, "Command not found.")

	case cmderr.BotMissingPermissions:
		r.send(ctx, inv, fmt.Sprintf(
			"I need the **%s** permission(s) to run this command.",
			FormatPermissions(e.Missing)))

	case cmderr.DisabledCommand:
		r.send(ctx, inv, "This command has been disabled.")

	case cmderr.CommandOnCooldown:
		r.handleCooldown(ctx, inv, e)

	case cmderr.MissingPermissions:
		r.send(ctx, inv, fmt.Sprintf(
			"You need the **%s** permission(s) to use this command.",
			FormatPermissions(e.Missing)))

	case cmderr.UserInputError:
		r.send(ctx, inv, fmt.Sprintf("Invalid command input: %s", e.Detail))

	case cmderr.NoPrivateMessage:
		r.handleNoPrivateMessage(ctx, inv)

	case cmderr.CheckFailure:
		r.send(ctx, inv, "You do not have permission to use this command.")

	case cmderr.ForbiddenAction:
		r.handleForbidden(ctx, inv, e)

	case cmderr.RoleNotFound:
		r.send(ctx, inv, e.Message)

	case cmderr.DefaultGuildRoleNotSet:
		r.send(ctx, inv, fmt.Sprintf("Trying to use default guild license but: %s", e.Message))

	case cmderr.DatabaseMissingData:
		r.send(ctx, inv, fmt.Sprintf("Critical database error: %s", e.Message))
		r.escalate(ctx, inv, raised)

	default:
		r.escalate(ctx, inv, raised)
		// Policy choice carried over from the previous handler: the raw
		// error text is shown to the invoking channel.
		r.send(ctx, inv, fmt.Sprintf(
			"Ignoring exception **%s** that happened while processing command **%s**:\n%v",
			cmderr.TypeName(cause), inv.CommandName(), cause))
	}
}

// handleCooldown lets developers bypass cooldowns by re-invoking the
// command; everyone else gets the retry message.
func (r *Responder) handleCooldown(ctx context.Context, inv InvocationContext, e cmderr.CommandOnCooldown) {
	if r.developers != nil && r.developers.IsDeveloper(inv.AuthorID()) {
		r.metrics.RecordReinvoke()
		// Reinvoke bypasses error handlers, so its failure surfaces here
		// as a plain reply.
		if err := inv.Reinvoke(ctx); err != nil {
			r.send(ctx, inv, err.Error())
		}
		return
	}

	r.send(ctx, inv, fmt.Sprintf(
		"This command is on cooldown, please retry in %ds.",
		int(math.Ceil(e.RetryAfter))))
}

// handleNoPrivateMessage tells the actor over DM that the command is
// guild-only. A permission-denied failure on the DM itself is swallowed;
// anything else is logged.
func (r *Responder) handleNoPrivateMessage(ctx context.Context, inv InvocationContext) {
	err := inv.SendDM(ctx, "This command cannot be used in direct messages.")
	if err == nil {
		r.metrics.RecordReply()
		return
	}
	if _, forbidden := cmderr.Cause(err).(cmderr.ForbiddenAction); forbidden {
		r.metrics.RecordDMSuppressed()
		return
	}
	r.log.Error("failed to send direct message", "error", err,
		"command", inv.CommandName(), "actor", inv.AuthorID())
}

func (r *Responder) handleForbidden(ctx context.Context, inv InvocationContext, e cmderr.ForbiddenAction) {
	switch e.Code {
	case cmderr.CodeMissingPermissions:
		r.send(ctx, inv, fmt.Sprintf(
			"%s.\nCheck role hierarchy - I can only manage roles below me.", e.Detail))
	case cmderr.CodeCannotSendToUser:
		r.send(ctx, inv, fmt.Sprintf("%s.\nHint: Disabled DMs?", e.Detail))
	default:
		r.send(ctx, inv, fmt.Sprintf("%s.", e.Detail))
	}
}

// send replies in the invoking channel. The responder is terminal, so a
// failed reply is logged and dropped rather than re-raised.
func (r *Responder) send(ctx context.Context, inv InvocationContext, text string) {
	if err := inv.Send(ctx, text); err != nil {
		r.log.Error("failed to send reply", "error", err,
			"command", inv.CommandName(), "actor", inv.AuthorID())
		return
	}
	r.metrics.RecordReply()
}

func (r *Responder) escalate(ctx context.Context, inv InvocationContext, raised error) {
	r.metrics.RecordEscalation()
	if r.diag == nil {
		return
	}
	r.diag.Report(ctx, diagnostics.Invocation{
		Command: inv.CommandName(),
		Actor:   inv.AuthorID(),
		Guild:   inv.GuildName(),
	}, raised)
}
