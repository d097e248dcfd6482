package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"awsdocs/errors"
)

// maxBodyBytes caps request bodies; every body here is a handful of fields.
const maxBodyBytes = 1 << 20

type filterRequest struct {
	VpcID    string     `json:"vpc_id"`
	Protocol string     `json:"protocol"`
	Port     portFilter `json:"port"`
}

// portFilter accepts the port as a JSON string or number.
type portFilter string

func (p *portFilter) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = portFilter(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 32); err != nil {
		return err
	}
	*p = portFilter(n.String())
	return nil
}

type exportRequest struct {
	Region  string `json:"region"`
	Account string `json:"account"`
}

type assumeRoleRequest struct {
	RoleARN string `json:"role_arn"`
	Region  string `json:"region"`
}

type assumeRoleResponse struct {
	SessionID  string `json:"session_id"`
	Expiration string `json:"expiration"`
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil || stderrors.Is(err, io.EOF) {
		return nil
	}
	return errors.New(errors.ErrBadRequest, "Invalid request body",
		map[string]interface{}{
			"path": r.URL.Path,
		}, err)
}
