package server

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"awsdocs/awsd"
	"awsdocs/awsd/models"
	"awsdocs/errors"
	"awsdocs/export"
	"awsdocs/metrics"
	"awsdocs/sgjoin"
)

const noSecurityGroupsMessage = "No security groups data available. Please call /security-groups first."

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// noDataResponse tells callers that nothing has been listed yet, as opposed
// to a listing with zero results.
type noDataResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(service string) handlerFunc {
	return func(r *http.Request) (interface{}, int, error) {
		return healthResponse{Status: "ok", Service: service}, http.StatusOK, nil
	}
}

func (s *Server) listInstances(r *http.Request) (interface{}, int, error) {
	region, err := s.region(r)
	if err != nil {
		return nil, 0, err
	}

	ctx, cancel := s.providerContext(r)
	defer cancel()

	instances, err := s.inventory.Instances(ctx, region)
	if err != nil {
		return nil, 0, err
	}
	s.instances.Replace(instances)
	recordSnapshot("instances", s.instances.UpdatedAt())
	return instances, http.StatusOK, nil
}

func (s *Server) describeNetwork(r *http.Request) (interface{}, int, error) {
	region, err := s.region(r)
	if err != nil {
		return nil, 0, err
	}

	ctx, cancel := s.providerContext(r)
	defer cancel()

	doc, err := s.inventory.Network(ctx, region)
	if err != nil {
		return nil, 0, err
	}
	return doc, http.StatusOK, nil
}

func (s *Server) listBuckets(r *http.Request) (interface{}, int, error) {
	region, err := s.region(r)
	if err != nil {
		return nil, 0, err
	}

	ctx, cancel := s.providerContext(r)
	defer cancel()

	buckets, err := s.inventory.Buckets(ctx, region)
	if err != nil {
		return nil, 0, err
	}
	s.buckets.Replace(buckets)
	recordSnapshot("buckets", s.buckets.UpdatedAt())
	return buckets, http.StatusOK, nil
}

// listSecurityGroups responds with a mapping from group id to group.
func (s *Server) listSecurityGroups(r *http.Request) (interface{}, int, error) {
	region, err := s.region(r)
	if err != nil {
		return nil, 0, err
	}

	ctx, cancel := s.providerContext(r)
	defer cancel()

	groups, err := s.inventory.SecurityGroups(ctx, region)
	if err != nil {
		return nil, 0, err
	}
	s.securityGroups.Replace(groups)
	recordSnapshot("security_groups", s.securityGroups.UpdatedAt())

	byID := make(map[string]models.SecurityGroup, len(groups))
	for _, g := range groups {
		byID[g.GroupID] = g
	}
	return byID, http.StatusOK, nil
}

func (s *Server) filterSecurityGroups(r *http.Request) (interface{}, int, error) {
	var req filterRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, 0, err
	}

	groups, ok := s.securityGroups.Load()
	if !ok {
		return noDataResponse{Error: noSecurityGroupsMessage}, http.StatusOK, nil
	}
	s.logger.Debug("Filtering security group snapshot",
		zap.String("operation", "filter_security_groups"),
		zap.Int("groups", len(groups)),
		zap.Duration("snapshot_age", s.now().Sub(s.securityGroups.UpdatedAt())),
	)

	return sgjoin.Filter(groups, sgjoin.Criteria{
		VpcID:    strings.TrimSpace(req.VpcID),
		Protocol: strings.TrimSpace(req.Protocol),
		Port:     strings.TrimSpace(string(req.Port)),
	}), http.StatusOK, nil
}

// exportSecurityGroups streams the rules of a region as a CSV attachment.
func (s *Server) exportSecurityGroups(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	region := strings.TrimSpace(req.Region)
	if region == "" {
		var err error
		if region, err = s.region(r); err != nil {
			s.writeError(w, r, err)
			return
		}
	} else if err := awsd.ValidateRegion(region); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := s.providerContext(r)
	defer cancel()

	groups, err := s.inventory.SecurityGroupRules(ctx, region)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Rendered up front so a write failure still yields an error response.
	var buf bytes.Buffer
	if err := export.WriteSecurityGroupsCSV(&buf, groups, region); err != nil {
		s.writeError(w, r, err)
		return
	}

	filename := export.Filename(region, s.now())
	s.logger.Info("Security groups exported",
		zap.String("operation", "export_csv"),
		zap.String("region", region),
		zap.String("account", req.Account),
		zap.Int("groups", len(groups)),
		zap.String("filename", filename),
	)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) assumeRole(r *http.Request) (interface{}, int, error) {
	var req assumeRoleRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, 0, err
	}

	ctx, cancel := s.providerContext(r)
	defer cancel()

	id, creds, err := s.sessions.Assume(ctx, req.RoleARN, req.Region)
	if err != nil {
		return nil, 0, err
	}
	return assumeRoleResponse{SessionID: id, Expiration: creds.Expiration}, http.StatusOK, nil
}

func (s *Server) getSession(r *http.Request) (interface{}, int, error) {
	id := mux.Vars(r)["session_id"]
	if id == "" {
		return nil, 0, errors.New(errors.ErrBadRequest, "session_id is required", nil, nil)
	}

	creds, err := s.sessions.Lookup(id)
	if err != nil {
		return nil, 0, err
	}
	return creds, http.StatusOK, nil
}

func recordSnapshot(name string, updated time.Time) {
	metrics.SnapshotUpdated.WithLabelValues(name).Set(float64(updated.Unix()))
}
