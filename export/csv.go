// Package export renders security-group rules as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"awsdocs/sgjoin"
)

// Header is the first CSV row.
var Header = []string{"sg_id", "name", "vpc_id", "region", "direction", "protocol", "port", "cidr"}

const (
	directionInbound  = "inbound"
	directionOutbound = "outbound"
)

// WriteSecurityGroupsCSV writes one row per rule and CIDR. Instance
// references are not part of the export.
func WriteSecurityGroupsCSV(w io.Writer, groups []sgjoin.Group, region string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}

	for _, g := range groups {
		if err := writeRules(writer, g, region, directionInbound, g.Inbound); err != nil {
			return err
		}
		if err := writeRules(writer, g, region, directionOutbound, g.Outbound); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeRules(writer *csv.Writer, g sgjoin.Group, region, direction string, perms []sgjoin.Permission) error {
	for _, p := range perms {
		protocol := sgjoin.NormalizeProtocol(p.Protocol)
		port := sgjoin.NormalizePort(p.FromPort)
		for _, cidr := range p.CIDRs {
			row := []string{g.ID, g.Name, g.VpcID, region, direction, protocol, port, cidr}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// Filename is the attachment name for an export taken at now.
func Filename(region string, now time.Time) string {
	return fmt.Sprintf("security_groups_%s_%s.csv", region, now.Format("20060102_150405"))
}
