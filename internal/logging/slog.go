package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is what the Box client logs through. *slog.Logger implements it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Attribute keys shared by every component.
const (
	KeyOperation = "operation"
	KeyService   = "service"
	KeyAccount   = "account"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyTool      = "tool"
	KeyMethod    = "method"
	KeyPath      = "path"
	KeyCode      = "status_code"
	KeyAttempt   = "attempt"
	KeyUserHash  = "user_hash"
	KeyDomain    = "user_domain"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewLogger returns a text or JSON logger writing to w. The stdio
// transport owns stdout, so callers pass stderr.
func NewLogger(w io.Writer, format string, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
	}
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func Operation(op string) slog.Attr    { return slog.String(KeyOperation, op) }
func Service(svc string) slog.Attr     { return slog.String(KeyService, svc) }
func Account(account string) slog.Attr { return slog.String(KeyAccount, account) }
func Tool(tool string) slog.Attr       { return slog.String(KeyTool, tool) }
func Status(status string) slog.Attr   { return slog.String(KeyStatus, status) }
func StatusCode(code int) slog.Attr    { return slog.Int(KeyCode, code) }
func Attempt(n uint) slog.Attr         { return slog.Uint64(KeyAttempt, uint64(n)) }
func UserHash(login string) slog.Attr  { return slog.String(KeyUserHash, AnonymizeLogin(login)) }
func Domain(login string) slog.Attr    { return slog.String(KeyDomain, ExtractDomain(login)) }

// Request returns the method and path of a Box API call, inlined into the
// record rather than grouped.
func Request(method, path string) slog.Attr {
	return slog.Group("", slog.String(KeyMethod, method), slog.String(KeyPath, path))
}

// Err is safe to call with a nil error; the empty group it returns is
// dropped by slog.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeLogin hashes a Box login so log lines about the same user can be
// correlated without storing the login. Case is ignored.
func AnonymizeLogin(login string) string {
	if login == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.ToLower(login)))
	return "user:" + hex.EncodeToString(sum[:8])
}

// ExtractDomain returns the part after "@", or "" for anything that is not
// a single-@ address.
func ExtractDomain(login string) string {
	local, domain, ok := strings.Cut(login, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return ""
	}
	return domain
}

// SanitizeToken describes a token by its length only.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
