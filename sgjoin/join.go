// Package sgjoin joins security-group rules to the instances that reference
// the group.
//
// Every rule produces one row per (CIDR, referencing instance) pair. A group
// no instance references still produces one row per CIDR with null instance
// fields. Rows keep provider rule order, then CIDR order, then instance order.
// A rule with no CIDR entries produces no rows.
package sgjoin

import (
	"strconv"

	"awsdocs/awsd/models"
)

// All is the rendering of the "-1" protocol and of a missing port.
const All = "All"

// Permission is one provider rule entry.
type Permission struct {
	Protocol *string
	FromPort *int32
	CIDRs    []string
}

// Group is a security group as described by the provider.
type Group struct {
	ID       string
	Name     string
	VpcID    string
	Inbound  []Permission
	Outbound []Permission
}

// Instance is an instance with the addresses and groups the join needs.
type Instance struct {
	ID        string
	Name      *string
	PrivateIP *string
	PublicIP  *string
	GroupIDs  []string
}

// NormalizeProtocol renders "-1" and an absent protocol as All.
func NormalizeProtocol(protocol *string) string {
	if protocol == nil || *protocol == "-1" {
		return All
	}
	return *protocol
}

// NormalizePort renders an absent from-port as All, else its decimal form.
func NormalizePort(fromPort *int32) string {
	if fromPort == nil {
		return All
	}
	return strconv.FormatInt(int64(*fromPort), 10)
}

// IndexByGroup maps each group id to the instances referencing it,
// in instance order.
func IndexByGroup(instances []Instance) map[string][]Instance {
	index := make(map[string][]Instance)
	for _, inst := range instances {
		for _, groupID := range inst.GroupIDs {
			index[groupID] = append(index[groupID], inst)
		}
	}
	return index
}

// Join produces the grouped rule document for every group, in group order.
func Join(groups []Group, instances []Instance, region string) []models.SecurityGroup {
	index := IndexByGroup(instances)

	result := make([]models.SecurityGroup, 0, len(groups))
	for _, g := range groups {
		refs := index[g.ID]
		result = append(result, models.SecurityGroup{
			GroupID:       g.ID,
			GroupName:     g.Name,
			VpcID:         g.VpcID,
			Region:        region,
			InboundRules:  expand(g.Inbound, refs),
			OutboundRules: expand(g.Outbound, refs),
		})
	}
	return result
}

// RowCount is the number of rows Join emits for perms given k referencing
// instances.
func RowCount(perms []Permission, k int) int {
	if k < 1 {
		k = 1
	}
	n := 0
	for _, p := range perms {
		n += len(p.CIDRs) * k
	}
	return n
}

func expand(perms []Permission, refs []Instance) []models.Rule {
	rows := make([]models.Rule, 0, RowCount(perms, len(refs)))
	for _, p := range perms {
		protocol := NormalizeProtocol(p.Protocol)
		port := NormalizePort(p.FromPort)
		for _, cidr := range p.CIDRs {
			if len(refs) == 0 {
				rows = append(rows, models.Rule{Protocol: protocol, Port: port, CIDR: cidr})
				continue
			}
			for _, inst := range refs {
				id := inst.ID
				rows = append(rows, models.Rule{
					Protocol:     protocol,
					Port:         port,
					CIDR:         cidr,
					InstanceID:   &id,
					InstanceName: inst.Name,
					PrivateIP:    inst.PrivateIP,
					PublicIP:     inst.PublicIP,
				})
			}
		}
	}
	return rows
}
