package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPage       = "page"
	KeySnippet    = "snippet"
	KeySection    = "section"
	KeyURL        = "url"
	KeyAlias      = "alias"
	KeyPath       = "path"
	KeyTarget     = "target"
	KeyCount      = "count"
	KeyStatus     = "status"
	KeyContentLen = "content_length"
	KeyMethod     = "method"
	KeyRemoteAddr = "remote_addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Page(p string) slog.Attr         { return slog.String(KeyPage, p) }
func Snippet(ref string) slog.Attr    { return slog.String(KeySnippet, ref) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Alias(a string) slog.Attr        { return slog.String(KeyAlias, a) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func ContentLength(n int64) slog.Attr { return slog.Int64(KeyContentLen, n) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
