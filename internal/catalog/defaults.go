package catalog

import "github.com/mokbank/mokbank/internal/model"

// DefaultCurriculum returns the built-in learning modules for an age band.
func DefaultCurriculum(ageBand string) []model.LearningModule {
	switch ageBand {
	case "teen":
		return append(starterModules(), teenModules()...)
	default:
		return starterModules()
	}
}

func starterModules() []model.LearningModule {
	return []model.LearningModule{
		{ID: "money-basics", Title: "What Is Money?", XPReward: 50, TotalPoints: 5},
		{ID: "needs-wants", Title: "Needs vs. Wants", XPReward: 60, TotalPoints: 5},
		{ID: "saving-101", Title: "Saving 101", XPReward: 75, TotalPoints: 10},
		{ID: "goal-setting", Title: "Setting a Savings Goal", XPReward: 75, TotalPoints: 10},
		{ID: "budgeting", Title: "Making a Budget", XPReward: 100, TotalPoints: 10},
	}
}

func teenModules() []model.LearningModule {
	return []model.LearningModule{
		{ID: "investing-intro", Title: "Intro to Investing", XPReward: 150, TotalPoints: 10},
		{ID: "compound-interest", Title: "The Magic of Compound Interest", XPReward: 150, TotalPoints: 10},
		{ID: "stablecoins", Title: "Digital Dollars and Stablecoins", XPReward: 200, TotalPoints: 12},
	}
}
