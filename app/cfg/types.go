package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath    string
	FeedsDir  string
	DealsFile string

	// HTTP server
	Port       string
	BaseUrl    string
	CronSecret string

	// Ingestion
	SchedulerInterval int
	UserAgent         string
	FetchTimeout      int
	EntryDelay        int
	MaxItems          int

	// Summarization backend
	AIURL     string
	AIModel   string
	AITimeout int

	// Slug cache
	RedisAddr     string
	RedisPassword string
	RedisTTL      int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}

func (c *Cfg) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

func (c *Cfg) EntryDelayDuration() time.Duration {
	return time.Duration(c.EntryDelay) * time.Millisecond
}

func (c *Cfg) SchedulerIntervalDuration() time.Duration {
	return time.Duration(c.SchedulerInterval) * time.Second
}

func (c *Cfg) AITimeoutDuration() time.Duration {
	return time.Duration(c.AITimeout) * time.Second
}

func (c *Cfg) RedisTTLDuration() time.Duration {
	return time.Duration(c.RedisTTL) * time.Second
}
