package oidcprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/pkg/errors"
)

const maxRegistrationResponse = 1 << 20

type signUpRequest struct {
	ClientID   string              `json:"clientId"`
	Username   string              `json:"username"`
	Password   string              `json:"password"`
	Attributes identity.Attributes `json:"attributes"`
}

type signUpResponse struct {
	Username      string `json:"username"`
	UserConfirmed bool   `json:"userConfirmed"`
}

type confirmRequest struct {
	ClientID string `json:"clientId"`
	Username string `json:"username"`
	Code     string `json:"code"`
}

// errorBody is the provider's error document
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (p *provider) SignUp(ctx context.Context, username, password string, attributes identity.Attributes) (*identity.Identity, error) {
	var resp signUpResponse
	err := p.svc.postRegistration(ctx, "/signup", signUpRequest{
		ClientID:   p.svc.cfg.ClientID,
		Username:   username,
		Password:   password,
		Attributes: attributes,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Username == "" {
		resp.Username = username
	}
	id := &identity.Identity{Username: resp.Username, Attributes: identity.Attributes{}}
	for k, v := range attributes {
		id.Attributes[k] = v
	}
	return id, nil
}

func (p *provider) ConfirmRegistration(ctx context.Context, username, code string) error {
	return p.svc.postRegistration(ctx, "/confirm", confirmRequest{
		ClientID: p.svc.cfg.ClientID,
		Username: username,
		Code:     code,
	}, nil)
}

// postRegistration posts a JSON document to the registration API. Error
// responses carrying {code,message} become coded provider errors.
func (s *Service) postRegistration(ctx context.Context, path string, body, out any) error {
	if s.cfg.RegistrationURL == "" {
		return identity.NewError(identity.CodeServiceUnavailable, "Registration is not configured")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "[oidcprovider.postRegistration] marshal")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(s.cfg.RegistrationURL, "/")+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "[oidcprovider.postRegistration] NewRequest")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return identity.WrapError(identity.CodeServiceUnavailable, "Registration request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRegistrationResponse))
	if err != nil {
		return identity.WrapError(identity.CodeServiceUnavailable, "Failed to read registration response", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var eb errorBody
		if jsonErr := json.Unmarshal(data, &eb); jsonErr != nil || eb.Code == "" {
			return identity.NewError(identity.CodeServiceUnavailable, http.StatusText(resp.StatusCode))
		}
		return identity.NewError(identity.ErrorCode(eb.Code), eb.Message)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.Wrap(err, "[oidcprovider.postRegistration] unmarshal")
		}
	}
	return nil
}
