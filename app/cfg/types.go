package cfg

type Cfg struct {
	// Application configuration
	ConfigsDir        string
	DBPath            string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
