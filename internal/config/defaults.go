package config

import "time"

const (
	redditEndpoint = "https://www.reddit.com/r/{name}/new.json?limit=1"
	redditBaseURL  = "https://www.reddit.com"
)

var defaultSubreddits = []string{
	"AncientCivilizations",
	"fountainpens",
	"Asmongold",
	"eu4",
	"DoomerCircleJerk",
}

// Default returns the built-in watch list used when no config file exists.
// The token still has to come from the environment.
func Default() *Config {
	config := &Config{
		Bot: BotConfig{Name: "hyperion", LogLevel: "info"},
		Discord: DiscordConfig{
			ChannelID: "1153263160556531762",
		},
		Storage: StorageConfig{Type: "none"},
		Groups: map[string]GroupConfig{
			"reddit": {
				Interval: Duration{30 * time.Minute},
				Stagger:  Duration{1500 * time.Millisecond},
			},
		},
	}

	for _, sub := range defaultSubreddits {
		config.Sources = append(config.Sources, SourceConfig{
			Name:     sub,
			Mode:     "feed",
			Endpoint: redditEndpoint,
			BaseURL:  redditBaseURL,
			Group:    "reddit",
		})
	}

	config.Sources = append(config.Sources, SourceConfig{
		Name:     "hypixel-off-topic",
		Mode:     "html",
		Endpoint: "https://hypixel.net/forums/off-topic.2/",
		BaseURL:  "https://hypixel.net",
		Selector: "div.structItem-title a",
		Label:    "New Off Topic Thread on Hypixel",
		Interval: Duration{time.Hour},
	})

	return config
}
