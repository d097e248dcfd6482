package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"awsdocs/sgjoin"
)

func str(s string) *string {
	return &s
}

func port(p int32) *int32 {
	return &p
}

func TestWriteSecurityGroupsCSV(t *testing.T) {
	groups := []sgjoin.Group{
		{
			ID:    "sg-1",
			Name:  "web, public",
			VpcID: "vpc-1",
			Inbound: []sgjoin.Permission{
				{Protocol: str("tcp"), FromPort: port(22), CIDRs: []string{"0.0.0.0/0", "10.0.0.0/8"}},
				{Protocol: str("tcp"), FromPort: port(80)},
			},
			Outbound: []sgjoin.Permission{
				{Protocol: str("-1"), CIDRs: []string{"0.0.0.0/0"}},
			},
		},
		{ID: "sg-2", Name: "empty", VpcID: "vpc-2"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSecurityGroupsCSV(&buf, groups, "ap-northeast-2"))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		Header,
		{"sg-1", "web, public", "vpc-1", "ap-northeast-2", "inbound", "tcp", "22", "0.0.0.0/0"},
		{"sg-1", "web, public", "vpc-1", "ap-northeast-2", "inbound", "tcp", "22", "10.0.0.0/8"},
		{"sg-1", "web, public", "vpc-1", "ap-northeast-2", "outbound", "All", "All", "0.0.0.0/0"},
	}, records)
}

func TestWriteSecurityGroupsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSecurityGroupsCSV(&buf, nil, "us-east-1"))
	assert.Equal(t, "sg_id,name,vpc_id,region,direction,protocol,port,cidr\n", buf.String())
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 11, 5, 9, 7, 3, 0, time.UTC)
	assert.Equal(t, "security_groups_eu-west-1_20241105_090703.csv", Filename("eu-west-1", now))
}
