package sgjoin

import (
	"awsdocs/awsd/models"
)

// Criteria holds the optional filters; empty fields are not applied.
type Criteria struct {
	VpcID    string
	Protocol string
	Port     string
}

// Filter returns the groups matching every supplied criterion. Matching
// groups are returned whole, not pruned to the matching rules.
func Filter(groups []models.SecurityGroup, c Criteria) []models.SecurityGroup {
	result := make([]models.SecurityGroup, 0, len(groups))
	for _, g := range groups {
		if c.VpcID != "" && g.VpcID != c.VpcID {
			continue
		}
		if c.Protocol != "" && !anyRule(g, func(r models.Rule) bool { return r.Protocol == c.Protocol }) {
			continue
		}
		if c.Port != "" && !anyRule(g, func(r models.Rule) bool { return r.Port == c.Port }) {
			continue
		}
		result = append(result, g)
	}
	return result
}

func anyRule(g models.SecurityGroup, match func(models.Rule) bool) bool {
	for _, r := range g.InboundRules {
		if match(r) {
			return true
		}
	}
	for _, r := range g.OutboundRules {
		if match(r) {
			return true
		}
	}
	return false
}
