package loader

import (
	"time"

	"hyperion/internal/config"
	"hyperion/internal/core"
	"hyperion/internal/types"
)

// GroupPlan is the resolved membership of one polling timer.
type GroupPlan struct {
	Name     string
	Interval time.Duration
	Stagger  time.Duration
	Sources  []types.Source
}

// PlanGroups lays enabled sources out into polling groups. Named groups keep
// the declaration order of their members and appear where their first member
// is declared; an ungrouped source gets a group of its own.
func PlanGroups(cfg *config.Config) []GroupPlan {
	var plans []GroupPlan
	index := make(map[string]int)

	for _, sc := range cfg.Sources {
		if sc.Disabled {
			continue
		}
		src := sc.Source(cfg.Groups)

		if sc.Group == "" {
			plans = append(plans, GroupPlan{
				Name:     src.Name,
				Interval: src.Interval,
				Sources:  []types.Source{src},
			})
			continue
		}

		i, ok := index[sc.Group]
		if !ok {
			gc := cfg.Groups[sc.Group]
			stagger := gc.Stagger.Duration
			if stagger == 0 {
				stagger = core.DefaultStagger
			}
			plans = append(plans, GroupPlan{
				Name:     sc.Group,
				Interval: gc.Interval.Duration,
				Stagger:  stagger,
			})
			i = len(plans) - 1
			index[sc.Group] = i
		}
		plans[i].Sources = append(plans[i].Sources, src)
	}

	return plans
}
