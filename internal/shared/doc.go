// Package shared holds helpers used by more than one package. Its testutil
// subpackage provides the slog capture handler and the sample exports the
// cleaner, exporter and command tests share.
package shared
