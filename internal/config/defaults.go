package config

const (
	defaultBackupRoot        = "~/photovault"
	defaultCredentialsFile   = "~/.config/photovault/credentials.json"
	defaultTokenFile         = "~/.config/photovault/token.json"
	defaultPageSize          = 100
	defaultWorkers           = 5
	defaultChunkSize         = 8192
	defaultRetryAttempts     = 3
	defaultRetryDelaySeconds = 5
	defaultTimeoutSeconds    = 30
	defaultJPEGQuality       = 95
	defaultHEIFTool          = "heif-convert"
	defaultHashAlgorithm     = "sha256"
	defaultNotifyTimeout     = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultMinFreeSpaceGB    = 10
	defaultMirrorPrefix      = "photovault"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Library: Library{
			CredentialsFile: defaultCredentialsFile,
			TokenFile:       defaultTokenFile,
			PageSize:        defaultPageSize,
		},
		Paths: Paths{
			BackupRoot: defaultBackupRoot,
		},
		Backup: Backup{
			Workers:           defaultWorkers,
			ChunkSize:         defaultChunkSize,
			RetryAttempts:     defaultRetryAttempts,
			RetryDelaySeconds: defaultRetryDelaySeconds,
			TimeoutSeconds:    defaultTimeoutSeconds,
		},
		Processing: Processing{
			ConvertHEIC: true,
			JPEGQuality: defaultJPEGQuality,
			HEIFTool:    defaultHEIFTool,
		},
		Dedup: Dedup{
			Enabled:       true,
			HashAlgorithm: defaultHashAlgorithm,
		},
		Mirror: Mirror{
			Prefix: defaultMirrorPrefix,
			UseSSL: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Preflight: Preflight{
			MinFreeSpaceGB: defaultMinFreeSpaceGB,
		},
	}
}
