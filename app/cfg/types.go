package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	SourcesDir   string
	Port         string
	APIAccessKey string

	// Sync engine configuration
	SyncInterval           int // seconds
	DisplayRefreshInterval int // seconds
	StalenessHours         int
	FetchTimeout           int // seconds

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
