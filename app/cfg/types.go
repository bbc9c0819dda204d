package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	SourcesDir        string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Fetching configuration
	BirdPath   string
	FetchCount int

	// Summarization configuration
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// One-shot mode: process a single source and exit
	Source     string
	OutputFile string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
