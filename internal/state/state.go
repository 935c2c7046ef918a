package state

import (
	"hyperion/internal/components"
	"hyperion/internal/config"
	"hyperion/internal/core"
)

type State struct {
	Config   *config.Config
	Registry *components.Registry
	Bot      *core.Bot
}

func NewState(cfg *config.Config, registry *components.Registry, bot *core.Bot) *State {
	return &State{
		Config:   cfg,
		Registry: registry,
		Bot:      bot,
	}
}
