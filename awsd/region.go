package awsd

import (
	"regexp"

	"awsdocs/errors"
)

// regionPattern matches AWS region names such as us-east-1, ap-northeast-2,
// us-gov-west-1 and us-isob-east-1.
var regionPattern = regexp.MustCompile(`^[a-z]{2}(-gov|-iso[a-z]?)?-[a-z]{4,9}-[0-9]{1,2}$`)

// ValidateRegion rejects values that cannot be an AWS region name.
func ValidateRegion(region string) error {
	if !regionPattern.MatchString(region) {
		return errors.New(errors.ErrBadRequest, "Invalid region",
			map[string]interface{}{
				"region": region,
			}, nil)
	}
	return nil
}
