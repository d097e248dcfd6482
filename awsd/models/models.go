package models

// Instance is the simplified document for one EC2 instance.
type Instance struct {
	InstanceID     string             `json:"instance_id"`
	Name           *string            `json:"name"`
	InstanceType   string             `json:"instance_type"`
	OS             *string            `json:"os"`
	State          string             `json:"state"`
	VpcID          *string            `json:"vpc_id"`
	AZ             *string            `json:"az"`
	SubnetID       *string            `json:"subnet_id"`
	PrivateIP      *string            `json:"private_ip"`
	PublicIP       *string            `json:"public_ip"`
	SecurityGroups []SecurityGroupRef `json:"security_groups"`
	KeyPair        *string            `json:"key_pair"`
	AMIID          *string            `json:"ami_id"`
	KMSKeyID       *string            `json:"kms_key_id"`
	RootVolumeID   *string            `json:"root_volume_id"`
	RootVolumeType *string            `json:"root_volume_type"`
	RootVolumeSize *int32             `json:"root_volume_size"`
	DataVolumes    []Volume           `json:"data_volumes"`
	LaunchTime     *string            `json:"launch_time"`
}

// SecurityGroupRef is a security group as referenced from an instance
type SecurityGroupRef struct {
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
}

// Volume summarizes an EBS volume attached to an instance
type Volume struct {
	VolumeID string  `json:"volume_id"`
	SizeGB   *int32  `json:"size_gb"`
	Type     *string `json:"type"`
	KMSKeyID *string `json:"kms_key_id"`
}

// Rule is one (rule, CIDR, instance) row of a security group.
type Rule struct {
	Protocol     string  `json:"protocol"`
	Port         string  `json:"port"`
	CIDR         string  `json:"cidr"`
	InstanceID   *string `json:"instance_id"`
	InstanceName *string `json:"instance_name"`
	PrivateIP    *string `json:"private_ip"`
	PublicIP     *string `json:"public_ip"`
}

// SecurityGroup is a security group with its rules joined to the instances
// that reference it.
type SecurityGroup struct {
	GroupID       string `json:"sg_id"`
	GroupName     string `json:"sg_name"`
	VpcID         string `json:"vpc_id"`
	Region        string `json:"region"`
	InboundRules  []Rule `json:"inbound_rules"`
	OutboundRules []Rule `json:"outbound_rules"`
}

// BucketTag is an S3 tag in the lower-case form the bucket document uses
type BucketTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Bucket aggregates independently fetched S3 bucket attributes.
type Bucket struct {
	Name                string      `json:"name"`
	Region              string      `json:"region"`
	StaticWebsite       bool        `json:"static_website"`
	VersioningEnabled   bool        `json:"versioning_enabled"`
	MFADelete           bool        `json:"mfa_delete"`
	LifecycleRules      int         `json:"lifecycle_rules"`
	ReplicationEnabled  bool        `json:"replication_enabled"`
	CopySettingsEnabled bool        `json:"copy_settings_enabled"`
	Encrypted           bool        `json:"encrypted"`
	KMSKeyID            *string     `json:"kms_key_id"`
	BlockPublicAccess   bool        `json:"block_public_access"`
	Tags                []BucketTag `json:"tags"`
}

// Tag is an EC2 tag as returned by the network document
type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// VPC describes a virtual network
type VPC struct {
	VPC       string `json:"vpc"`
	Name      string `json:"name"`
	VpcID     string `json:"vpc_id"`
	CIDRBlock string `json:"cidr_block"`
	Tags      []Tag  `json:"tags"`
}

// Subnet describes a subnet of a VPC
type Subnet struct {
	SubnetName       string  `json:"subnet_name"`
	SubnetID         string  `json:"subnet_id"`
	CIDRBlock        string  `json:"cidr_block"`
	VpcID            string  `json:"vpc_id"`
	AvailabilityZone string  `json:"availability_zone"`
	RouteTable       *string `json:"route_table"`
	AvailableIPs     int32   `json:"available_ips"`
	Tags             []Tag   `json:"tags"`
}

// NATGateway describes a NAT gateway
type NATGateway struct {
	NATName            string  `json:"nat_name"`
	NATGatewayID       string  `json:"nat_gateway_id"`
	VpcID              string  `json:"vpc_id"`
	Type               *string `json:"type"`
	State              *string `json:"state"`
	ElasticIP          string  `json:"elastic_ip"`
	SubnetID           string  `json:"subnet_id"`
	PrivateIP          string  `json:"private_ip"`
	NetworkInterfaceID string  `json:"network_interface_id"`
	CreatedAt          *string `json:"created_at"`
	Tags               []Tag   `json:"tags"`
}

// NetworkDocument is the response of the network service
type NetworkDocument struct {
	VPCs        []VPC        `json:"vpcs"`
	Subnets     []Subnet     `json:"subnets"`
	NATGateways []NATGateway `json:"nat_gateways"`
}
