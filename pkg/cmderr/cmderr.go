// Package cmderr defines the closed set of errors raised during command
// dispatch. The responder classifies with a type switch over these types;
// anything outside the set is treated as unclassified and escalated.
package cmderr

import (
	"errors"
	"fmt"
	"strings"
)

// Platform error codes carried by ForbiddenAction.
const (
	CodeMissingPermissions = 50013
	CodeCannotSendToUser   = 50007
)

// CommandNotFound is raised when the invoked command does not exist.
type CommandNotFound struct{}

func (CommandNotFound) Error() string {
	return "command not found"
}

// BotMissingPermissions is raised by a command-level check when the bot
// itself lacks permissions. Missing preserves the check's ordering.
type BotMissingPermissions struct {
	Missing []string
}

func (e BotMissingPermissions) Error() string {
	return fmt.Sprintf("bot missing permissions: %s", strings.Join(e.Missing, ", "))
}

// DisabledCommand is raised when the command has been disabled.
type DisabledCommand struct{}

func (DisabledCommand) Error() string {
	return "command is disabled"
}

// CommandOnCooldown is raised when the per-command cooldown has not yet
// elapsed for the invoking actor.
type CommandOnCooldown struct {
	RetryAfter float64 // seconds until the command may run again
}

func (e CommandOnCooldown) Error() string {
	return fmt.Sprintf("command on cooldown, retry after %.2fs", e.RetryAfter)
}

// MissingPermissions is raised by a command-level check when the invoking
// member lacks permissions. Missing preserves the check's ordering.
type MissingPermissions struct {
	Missing []string
}

func (e MissingPermissions) Error() string {
	return fmt.Sprintf("missing permissions: %s", strings.Join(e.Missing, ", "))
}

// UserInputError is raised when command arguments fail to parse or convert.
type UserInputError struct {
	Detail string
}

func (e UserInputError) Error() string {
	return e.Detail
}

// NoPrivateMessage is raised when a guild-only command is invoked in a
// direct message.
type NoPrivateMessage struct{}

func (NoPrivateMessage) Error() string {
	return "command cannot be used in private messages"
}

// CheckFailure is raised when a generic command check fails.
type CheckFailure struct{}

func (CheckFailure) Error() string {
	return "command check failed"
}

// ForbiddenAction is a platform-level permission denial carrying the
// platform's numeric reason code.
type ForbiddenAction struct {
	Code   int
	Detail string
}

func (e ForbiddenAction) Error() string {
	return fmt.Sprintf("403 Forbidden (error code: %d): %s", e.Code, e.Detail)
}

// RoleNotFound is raised when a managed role has been deleted or cannot be
// resolved in the guild.
type RoleNotFound struct {
	Message string
}

func (e RoleNotFound) Error() string {
	return e.Message
}

// DefaultGuildRoleNotSet is raised when a command falls back to the guild's
// default license role but none is configured.
type DefaultGuildRoleNotSet struct {
	Message string
}

func (e DefaultGuildRoleNotSet) Error() string {
	return e.Message
}

// DatabaseMissingData is raised when a record the bot depends on is absent
// from the database. Indicates an integrity violation, not user error.
type DatabaseMissingData struct {
	Message string
}

func (e DatabaseMissingData) Error() string {
	return e.Message
}

// Cause unwraps err to its innermost cause. Command dispatch wraps raised
// errors in an invocation wrapper; classification must see the original.
func Cause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// TypeName returns the bare type name of err, without package path. Used
// in the unclassified-error reply and in diagnostics.
func TypeName(err error) string {
	if err == nil {
		return ""
	}
	name := fmt.Sprintf("%T", err)
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
