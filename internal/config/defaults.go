package config

const (
	defaultConfigPath           = "~/.config/ytharvest/config.toml"
	defaultYouTubeBaseURL       = "https://www.googleapis.com/youtube/v3"
	defaultRequestTimeout       = 15
	defaultRequestsPerSecond    = 5.0
	defaultBurst                = 5
	defaultChannelsFile         = "channels.csv"
	defaultOutputFile           = "videos.csv"
	defaultStateDir             = "~/.local/share/ytharvest"
	defaultLogDir               = "~/.local/share/ytharvest/logs"
	defaultTargetCount          = 5
	defaultDiscoveryAttempts    = 3
	defaultSubscriberMin        = 1000
	defaultSubscriberMax        = 9999
	defaultQueryLength          = 3
	defaultPageSize             = 50
	defaultDiscoveryPauseMillis = 100
	defaultPlaylistMaxPages     = 1
	defaultWorkers              = 4
	defaultSelectPauseMillis    = 80
	defaultBatchPauseMillis     = 120
	defaultRetryAttempts        = 5
	defaultRetryBaseMillis      = 1000
	defaultRetryMaxMillis       = 60000
	defaultDatabaseName         = "ytharvest.db"
	defaultUploadsTTLHours      = 168
	defaultVideoTTLHours        = 24
	defaultNotifyTimeout        = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"

	// MaxBatchSize is the largest id list the YouTube Data API accepts per call.
	MaxBatchSize = 50

	ChannelTableCSV    = "csv"
	ChannelTableSQLite = "sqlite"

	envAPIKey   = "YOUTUBE_API_KEY"
	envRedisURL = "YTHARVEST_REDIS_URL"
	envNtfy     = "NTFY_TOPIC"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		YouTube: YouTube{
			BaseURL:           defaultYouTubeBaseURL,
			RequestTimeout:    defaultRequestTimeout,
			RequestsPerSecond: defaultRequestsPerSecond,
			Burst:             defaultBurst,
		},
		Paths: Paths{
			ChannelsFile: defaultChannelsFile,
			OutputFile:   defaultOutputFile,
			StateDir:     defaultStateDir,
			LogDir:       defaultLogDir,
		},
		Discovery: Discovery{
			TargetCount:    defaultTargetCount,
			MaxAttempts:    defaultDiscoveryAttempts,
			SubscriberMin:  defaultSubscriberMin,
			SubscriberMax:  defaultSubscriberMax,
			QueryLength:    defaultQueryLength,
			SearchPageSize: defaultPageSize,
			BatchSize:      MaxBatchSize,
			PauseMillis:    defaultDiscoveryPauseMillis,
		},
		Enrichment: Enrichment{
			BatchSize:         MaxBatchSize,
			PlaylistPageSize:  defaultPageSize,
			PlaylistMaxPages:  defaultPlaylistMaxPages,
			Workers:           defaultWorkers,
			SelectPauseMillis: defaultSelectPauseMillis,
			BatchPauseMillis:  defaultBatchPauseMillis,
		},
		Retry: Retry{
			MaxAttempts:     defaultRetryAttempts,
			BaseDelayMillis: defaultRetryBaseMillis,
			MaxDelayMillis:  defaultRetryMaxMillis,
		},
		Storage: Storage{
			ChannelTable: ChannelTableCSV,
		},
		Cache: Cache{
			UploadsTTLHours: defaultUploadsTTLHours,
			VideoTTLHours:   defaultVideoTTLHours,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
