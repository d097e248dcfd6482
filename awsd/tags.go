package awsd

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"awsdocs/awsd/models"
)

// NotAvailable is the display name of network objects without a Name tag.
const NotAvailable = "N/A"

// nameTag returns the value of the first tag keyed "Name", or nil.
func nameTag(tags []types.Tag) *string {
	for _, tag := range tags {
		if aws.ToString(tag.Key) == "Name" {
			return aws.String(aws.ToString(tag.Value))
		}
	}
	return nil
}

// displayName is nameTag with the network-object sentinel.
func displayName(tags []types.Tag) string {
	if name := nameTag(tags); name != nil {
		return *name
	}
	return NotAvailable
}

func parseTags(tags []types.Tag) []models.Tag {
	result := make([]models.Tag, 0, len(tags))
	for _, tag := range tags {
		result = append(result, models.Tag{
			Key:   aws.ToString(tag.Key),
			Value: aws.ToString(tag.Value),
		})
	}
	return result
}

// isoTime renders a timestamp in ISO 8601, nil when absent.
func isoTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	return aws.String(t.UTC().Format(time.RFC3339))
}

// optionalString maps empty enum-like values to nil.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
