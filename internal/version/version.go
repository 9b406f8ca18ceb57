package version

const (
	AppName    = "whatsbot"
	AppVersion = "0.3.0"
)
