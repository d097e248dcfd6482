package configuration

import (
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"go.uber.org/zap"

	"awsdocs/errors"
)

// Service names understood by the services file.
const (
	ServiceEC2            = "ec2"
	ServiceNetwork        = "network"
	ServiceS3             = "s3"
	ServiceSecurityGroups = "security-groups"
	ServiceAuth           = "auth"
)

// DefaultListen holds the listen address used when a service block omits one.
var DefaultListen = map[string]string{
	ServiceEC2:            ":8001",
	ServiceNetwork:        ":8002",
	ServiceS3:             ":8003",
	ServiceSecurityGroups: ":8004",
	ServiceAuth:           ":8005",
}

// serviceOrder is the startup order when no services file exists.
var serviceOrder = []string{ServiceEC2, ServiceNetwork, ServiceS3, ServiceSecurityGroups, ServiceAuth}

// ServiceConfig is one `service "<name>" { ... }` block.
type ServiceConfig struct {
	Name    string `hcl:"name,label"`
	Listen  string `hcl:"listen,optional"`
	Enabled *bool  `hcl:"enabled,optional"`
}

type servicesFile struct {
	Services []ServiceConfig `hcl:"service,block"`
}

// DefaultServices returns every known service on its default address.
func DefaultServices() []ServiceConfig {
	out := make([]ServiceConfig, 0, len(serviceOrder))
	for _, name := range serviceOrder {
		out = append(out, ServiceConfig{Name: name, Listen: DefaultListen[name]})
	}
	return out
}

// LoadServices parses the HCL services file at path. A missing file yields
// DefaultServices. Disabled blocks are dropped from the result.
func LoadServices(path string) ([]ServiceConfig, error) {
	logger := zap.L().With(
		zap.String("package", packageName),
		zap.String("function", "LoadServices"),
	)

	if _, err := os.Stat(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			logger.Info("No services file found, running all services on default ports",
				zap.String("operation", "services_loading"),
				zap.String("file", path),
			)
			return DefaultServices(), nil
		}
		return nil, errors.New(errors.ErrConfigParse, "error reading services file",
			map[string]interface{}{
				"services_file": path,
			}, err)
	}

	var file servicesFile
	if err := hclsimple.DecodeFile(path, nil, &file); err != nil {
		return nil, errors.New(errors.ErrConfigParse, "error decoding services file",
			map[string]interface{}{
				"services_file": path,
			}, err)
	}

	seenNames := make(map[string]bool)
	seenListen := make(map[string]string)
	out := make([]ServiceConfig, 0, len(file.Services))
	for _, svc := range file.Services {
		if _, known := DefaultListen[svc.Name]; !known {
			return nil, errors.New(errors.ErrConfigInvalid, "unknown service",
				map[string]interface{}{
					"services_file": path,
					"service":       svc.Name,
				}, nil)
		}
		if seenNames[svc.Name] {
			return nil, errors.New(errors.ErrConfigInvalid, "service declared twice",
				map[string]interface{}{
					"services_file": path,
					"service":       svc.Name,
				}, nil)
		}
		seenNames[svc.Name] = true

		if svc.Enabled != nil && !*svc.Enabled {
			logger.Info("Service disabled",
				zap.String("operation", "services_loading"),
				zap.String("service", svc.Name),
			)
			continue
		}
		if svc.Listen == "" {
			svc.Listen = DefaultListen[svc.Name]
		}
		if other, dup := seenListen[svc.Listen]; dup {
			return nil, errors.New(errors.ErrConfigInvalid, "listen address shared by two services",
				map[string]interface{}{
					"services_file": path,
					"listen":        svc.Listen,
					"services":      []string{other, svc.Name},
				}, nil)
		}
		seenListen[svc.Listen] = svc.Name
		out = append(out, svc)
	}

	return out, nil
}
