package domain

import (
	"slices"
	"strings"
)

// RewardPool holds real-world rewards the learner can earn at milestones.
// UsedRewards is always a subset of Rewards.
type RewardPool struct {
	Rewards     []string `json:"rewards"`
	UsedRewards []string `json:"usedRewards"`
}

// NewRewardPool creates a pool with the given rewards and nothing used.
func NewRewardPool(rewards []string) RewardPool {
	return RewardPool{
		Rewards:     slices.Clone(rewards),
		UsedRewards: []string{},
	}
}

// Available returns the rewards that have not been used yet, in pool order.
func (p RewardPool) Available() []string {
	out := make([]string, 0, len(p.Rewards))
	for _, r := range p.Rewards {
		if !slices.Contains(p.UsedRewards, r) {
			out = append(out, r)
		}
	}
	return out
}

// IsUsed reports whether the reward has already been handed out.
func (p RewardPool) IsUsed(reward string) bool {
	return slices.Contains(p.UsedRewards, reward)
}

// WithAdded returns a copy of the pool with reward appended. Surrounding
// whitespace is trimmed.
func (p RewardPool) WithAdded(reward string) (RewardPool, error) {
	reward = strings.TrimSpace(reward)
	if reward == "" {
		return p, ErrRewardEmpty
	}
	if slices.Contains(p.Rewards, reward) {
		return p, ErrRewardExists
	}
	out := p.clone()
	out.Rewards = append(out.Rewards, reward)
	return out, nil
}

// WithRemoved returns a copy of the pool without reward in either list.
func (p RewardPool) WithRemoved(reward string) (RewardPool, error) {
	if !slices.Contains(p.Rewards, reward) {
		return p, ErrRewardNotFound
	}
	out := p.clone()
	out.Rewards = slices.DeleteFunc(out.Rewards, func(r string) bool { return r == reward })
	out.UsedRewards = slices.DeleteFunc(out.UsedRewards, func(r string) bool { return r == reward })
	return out, nil
}

// WithUsed returns a copy of the pool with reward marked as used.
func (p RewardPool) WithUsed(reward string) RewardPool {
	if p.IsUsed(reward) || !slices.Contains(p.Rewards, reward) {
		return p
	}
	out := p.clone()
	out.UsedRewards = append(out.UsedRewards, reward)
	return out
}

// WithUsageReset returns a copy of the pool with every reward available again.
func (p RewardPool) WithUsageReset() RewardPool {
	out := p.clone()
	out.UsedRewards = []string{}
	return out
}

func (p RewardPool) clone() RewardPool {
	rewards := slices.Clone(p.Rewards)
	if rewards == nil {
		rewards = []string{}
	}
	used := slices.Clone(p.UsedRewards)
	if used == nil {
		used = []string{}
	}
	return RewardPool{Rewards: rewards, UsedRewards: used}
}
