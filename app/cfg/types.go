package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	ListingsDir       string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	RefreshCron       string
	APIAccessKey      string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
