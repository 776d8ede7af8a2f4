package config

// filled at build time with -ldflags "-X github.com/l3montree-dev/cvesync/config.Version=..."
var (
	Version   = "dev"
	Commit    = ""
	Branch    = ""
	BuildDate = ""
)
