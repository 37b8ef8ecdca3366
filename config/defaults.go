package config

import "github.com/gaurav-prasanna/strokepipe/crawl"

// Renderer kinds.
const (
	RendererBrowser = "browser"
	RendererHTTP    = "http"
)

// Storage backends.
const (
	BackendDir    = "dir"
	BackendSQLite = "sqlite"
)

const (
	defaultNotFoundSentinel    = "ID Miss!"
	defaultReadySelector       = "#svg"
	defaultReadyTimeoutSeconds = 10
	defaultSettleDelaySeconds  = 5
	defaultHTTPTimeoutSeconds  = 30
	defaultRawDir              = "data"
	defaultNormalizedDir       = "json"
	defaultSnapshotDir         = "."
	defaultOutcomeLog          = "download_log.txt"
	defaultPreviewDir          = "preview"
	defaultSQLitePath          = "strokepipe.db"
	defaultRangeFrom           = "U+4E00"
	defaultRangeTo             = "U+9FFF"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults. Relative
// paths resolve against the working directory.
func Default() Config {
	return Config{
		Source: Source{
			URLTemplate:         crawl.DefaultURLTemplate,
			NotFoundSentinel:    defaultNotFoundSentinel,
			ReadySelector:       defaultReadySelector,
			ReadyTimeoutSeconds: defaultReadyTimeoutSeconds,
			SettleDelaySeconds:  defaultSettleDelaySeconds,
		},
		Renderer: Renderer{
			Kind:               RendererBrowser,
			Headless:           true,
			HTTPTimeoutSeconds: defaultHTTPTimeoutSeconds,
		},
		Paths: Paths{
			RawDir:        defaultRawDir,
			NormalizedDir: defaultNormalizedDir,
			SnapshotDir:   defaultSnapshotDir,
			OutcomeLog:    defaultOutcomeLog,
			PreviewDir:    defaultPreviewDir,
		},
		Storage: Storage{
			Backend:    BackendDir,
			SQLitePath: defaultSQLitePath,
		},
		Range: Range{
			From: defaultRangeFrom,
			To:   defaultRangeTo,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
